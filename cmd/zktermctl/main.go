package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/nattapong/zkterm"
)

func main() {
	cfg, err := parseFlags()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	client := zkterm.NewClient(cfg.Host,
		zkterm.WithPort(cfg.Port),
		zkterm.WithPassword(cfg.Password),
		zkterm.WithTimezone(cfg.Timezone),
		zkterm.WithForceUDP(cfg.ForceUDP),
		zkterm.WithVerbose(cfg.Verbose),
	)

	ctx := context.Background()

	if err := client.Connect(ctx); err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer client.Disconnect(ctx)

	info, err := client.GetDeviceInfo(ctx)
	if err != nil {
		log.Printf("get device info: %v", err)
	} else {
		fmt.Printf("device: %+v\n", info)
	}

	users, err := client.GetUsers(ctx)
	if err != nil {
		log.Printf("get users: %v", err)
	} else {
		fmt.Printf("%d users on device\n", len(users))
	}

	if err := client.StartLiveCapture(ctx); err != nil {
		log.Fatalf("start live capture: %v", err)
	}

	events := make(chan *zkterm.Attendance, 64)
	go pollEvents(ctx, client, events)

	go func() {
		for ev := range events {
			fmt.Printf("attendance: uid=%d user=%s at=%s method=%s\n",
				ev.UID, ev.UserID, ev.Timestamp, zkterm.StateName(ev.VerifyMethod))
		}
	}()

	gracefulQuit(func() {
		client.StopLiveCapture(ctx)
	})
}

func pollEvents(ctx context.Context, client *zkterm.Client, out chan<- *zkterm.Attendance) {
	for client.IsLiveCaptureActive() {
		ev, err := client.NextLiveEvent(ctx)
		if err != nil {
			log.Printf("live event error: %v", err)
			continue
		}
		if ev != nil {
			out <- ev
		}
	}
	close(out)
}

func gracefulQuit(f func()) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("stopping...")
	f()
}
