package main

import (
	"context"
	"fmt"
	"os"

	"github.com/tliron/commonlog"

	"tandem/internal/session"
	"tandem/internal/store"
)

func runReplay(path string, printText bool) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	rec, err := session.Load(f)
	if err != nil {
		return err
	}

	logger := commonlog.GetLogger("replay")

	st := store.New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, err := st.Subscribe(ctx)
	if err != nil {
		return err
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range events {
			logger.Debugf("%s %s: %d -> %d", ev.Type, ev.URI, ev.FromVersion, ev.ToVersion)
		}
	}()

	res, err := rec.Replay(st)
	cancel()
	<-done
	if err != nil {
		return err
	}

	sum, err := st.Checksum(res.URI)
	if err != nil {
		return err
	}

	fmt.Printf("%s: %d applied, %d stale, version %d, %d bytes, md5 %x\n",
		res.URI, res.Applied, res.Stale, res.Version, res.Length, sum)
	if printText {
		text, err := st.Text(res.URI)
		if err != nil {
			return err
		}
		fmt.Print(text)
	}
	return nil
}
