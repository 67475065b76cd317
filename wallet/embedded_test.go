package wallet

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

type fakeEnv struct {
	sdk          bool
	ua           string
	query        map[string]string
	parentOrigin string
	parentErr    error
	panics       bool
}

func (e fakeEnv) HasHostSDK() bool { return e.sdk }

func (e fakeEnv) UserAgent() string {
	if e.panics {
		panic("host exploded")
	}
	return e.ua
}

func (e fakeEnv) Query(key string) string { return e.query[key] }

func (e fakeEnv) ParentOrigin() (string, error) { return e.parentOrigin, e.parentErr }

func TestIsEmbedded(t *testing.T) {
	tests := []struct {
		name string
		env  Environment
		want bool
	}{
		{"host sdk present", fakeEnv{sdk: true}, true},
		{"user agent marker", fakeEnv{ua: "Mozilla/5.0 Warpcast/1.0"}, true},
		{"query flag", fakeEnv{query: map[string]string{"miniApp": "true"}}, true},
		{"parent origin match", fakeEnv{parentOrigin: "https://warpcast.com"}, true},
		{"foreign parent origin", fakeEnv{parentOrigin: "https://example.com"}, false},
		{"cross origin blocked without sdk", fakeEnv{parentErr: errors.New("blocked")}, false},
		{"plain standalone page", fakeEnv{ua: "Mozilla/5.0"}, false},
		{"nil environment", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewDetector(tt.env).IsEmbedded())
		})
	}
}

func TestIsEmbeddedNeverPanics(t *testing.T) {
	d := NewDetector(fakeEnv{panics: true})
	assert.NotPanics(t, func() {
		assert.False(t, d.IsEmbedded())
	})
}
