package cmd

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/HabitChainLabs/HabitChainBackend/pkg/xzap"
	"github.com/HabitChainLabs/HabitChainBackend/service"
	"github.com/HabitChainLabs/HabitChainBackend/service/config"
)

var DaemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "serve habit check-in api and ledger loops.",
	Long:  "serve habit check-in api and ledger loops.",
	Run: func(cmd *cobra.Command, args []string) {
		wg := &sync.WaitGroup{}
		wg.Add(1)

		ctx := context.Background()
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		onServiceExit := make(chan error, 1)

		go func() {
			defer wg.Done()

			// 1. parse the discovered config file
			cfg, err := config.UnmarshalCmdConfig()
			if err != nil {
				xzap.WithContext(ctx).Error("failed on unmarshal config", zap.Error(err))
				onServiceExit <- err
				return
			}

			xzap.WithContext(ctx).Info("habitchain server start", zap.Any("config", cfg))

			// 2. wire the service: db, redis, ledger rpc, wallet session
			s, err := service.New(ctx, cfg)
			if err != nil {
				xzap.WithContext(ctx).Error("failed on create server", zap.Error(err))
				onServiceExit <- err
				return
			}

			// 3. optional pprof listener
			if cfg.Monitor != nil && cfg.Monitor.PprofEnable {
				go func() {
					if err := http.ListenAndServe(fmt.Sprintf("0.0.0.0:%d", cfg.Monitor.PprofPort), nil); err != nil {
						xzap.WithContext(ctx).Warn("pprof listener stopped", zap.Error(err))
					}
				}()
			}

			// 4. run; blocks on the http listener
			if err := s.Start(); err != nil {
				xzap.WithContext(ctx).Error("failed on start server", zap.Error(err))
				onServiceExit <- err
				return
			}
		}()

		onSignal := make(chan os.Signal, 1)
		signal.Notify(onSignal, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-onSignal:
			switch sig {
			case syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM:
				cancel()
				xzap.WithContext(ctx).Info("exit by signal", zap.String("signal", sig.String()))
			}
		case err := <-onServiceExit:
			cancel()
			xzap.WithContext(ctx).Error("exit by error", zap.Error(err))
		}

		wg.Wait()
	},
}

func init() {
	rootCmd.AddCommand(DaemonCmd)
}
