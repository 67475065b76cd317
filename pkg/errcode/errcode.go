package errcode

import "fmt"

// Err is an API-facing coded error.
type Err struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

func (e *Err) Error() string {
	return fmt.Sprintf("code: %d, msg: %s", e.Code, e.Msg)
}

func NewErr(code int, msg string) *Err {
	return &Err{Code: code, Msg: msg}
}

// NewCustomErr wraps a free-form message into the generic custom code.
func NewCustomErr(msg string) *Err {
	return NewErr(CodeCustom, msg)
}

const (
	CodeOK         = 200
	CodeCustom     = 7000
	CodeParams     = 7001
	CodeUnexpected = 7500
)

var (
	NoErr         = NewErr(CodeOK, "success")
	ErrParams     = NewErr(CodeParams, "invalid params")
	ErrUnexpected = NewErr(CodeUnexpected, "internal server error")
)
