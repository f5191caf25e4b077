package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/presbrey/ircd/config"
	"github.com/presbrey/ircd/kernel"
	"github.com/presbrey/ircd/transport"
)

func main() {
	remoteServersFile := flag.String("remote-servers", "", "path to the TOML remote-server peer table")
	flag.Parse()

	listeners, err := config.LoadListeners()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *remoteServersFile != "" {
		listeners.RemoteServersFile = *remoteServersFile
	}

	remoteServers, err := config.LoadRemoteServers(listeners.RemoteServersFile)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	k := kernel.New(kernel.Config{
		ServerName:      listeners.ServerName,
		NetworkName:     listeners.NetworkName,
		Numeric:         listeners.Numeric,
		SelfToken:       listeners.Token(),
		Dial:            transport.Dial,
		RemoteServers:   remoteServers,
		ClientCapacity:  listeners.ClientCapacity,
		ChannelCapacity: listeners.ChannelCapacity,
		ServerCapacity:  listeners.ServerCapacity,
	})

	prometheus.MustRegister(kernel.NewMetrics(k))

	if err := transport.ListenClients(listeners.ClientAddr, k); err != nil {
		log.Fatalf("transport: %v", err)
	}
	if err := transport.ListenPeers(listeners.PeerAddr, k); err != nil {
		log.Fatalf("transport: %v", err)
	}

	stop := make(chan struct{})
	go k.Run(stop)
	log.Printf("%s booted on %s (clients) / %s (peers)", listeners.ServerName, listeners.ClientAddr, listeners.PeerAddr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Println("shutdown signal received")
	close(stop)
}
