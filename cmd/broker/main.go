package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-oidc-broker/internal/config"
	"github.com/jrsteele09/go-oidc-broker/interceptor"
	"github.com/jrsteele09/go-oidc-broker/server"
	"github.com/jrsteele09/go-oidc-broker/session"
	"github.com/jrsteele09/go-oidc-broker/trust"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Fatalf("Error running broker: %s\n", err)
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Printf("Broker stopped\n")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	displayAppname(c.GetAppName())

	lists, err := config.LoadTrustedDomains(c.GetTrustedDomainsPath())
	if err != nil {
		log.Printf("No trusted-domain table loaded (%s), all configurations start open\n", err)
		lists = map[string]trust.List{}
	}

	store := session.NewStore(trust.NewMatcher(lists))
	transport := interceptor.NewTransport(store, interceptor.WithReadinessTimeout(c.GetReadinessTimeout()))

	httpServer := &http.Server{Addr: c.GetPort(), Handler: server.New(c, store, transport)}
	go listenAndServe(httpServer)
	waitForStopSignal()
	returnError = shutdown(httpServer)
	return returnError
}

func listenAndServe(httpServer *http.Server) error {
	log.Printf("Broker listening on %s\n", httpServer.Addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(httpServer *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
