package main

import (
	"bufio"
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/dkeye/Remote/internal/adapters/ws"
	"github.com/dkeye/Remote/internal/config"
	"github.com/dkeye/Remote/internal/console"
	"github.com/dkeye/Remote/internal/dispatch"
	"github.com/dkeye/Remote/internal/logging"
	"github.com/dkeye/Remote/internal/session"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	fs := pflag.NewFlagSet("remote", pflag.ExitOnError)
	addr := fs.String("addr", "", "robot address to connect to at startup")
	fs.Int("port", 8080, "default robot port")
	fs.String("log.level", "info", "log level")
	fs.String("log.file", "", "also write logs to this rotating file")
	_ = fs.Parse(os.Args[1:])

	cfg, err := config.Load(fs)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	closer, err := logging.Setup(cfg.Log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up logging")
	}
	defer closer.Close()

	dialer := ws.NewDialer(ws.Options{
		HandshakeTimeout: cfg.DialTimeout,
		WriteTimeout:     cfg.WriteTimeout,
		ReadLimit:        cfg.ReadLimit,
	})
	mgr := session.NewManager(dialer, session.Options{
		DefaultPort: cfg.Port,
		Path:        cfg.WSPath,
		DialTimeout: cfg.DialTimeout,
		SendBuffer:  cfg.SendBuffer,
	})
	defer mgr.Close()

	out := console.NewOutput(os.Stdout)
	printer := console.NewPrinter(out)
	unsubscribe := mgr.OnEvent(printer.Print)
	defer unsubscribe()

	con := console.New(mgr, dispatch.New(), out)
	if *addr != "" {
		con.Exec("connect " + *addr)
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			lines <- sc.Text()
		}
	}()

	con.Exec("help")
	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok || !con.Exec(line) {
				return
			}
		}
	}
}
