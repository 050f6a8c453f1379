package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go-studioadmin/internal/adminclient"
	"go-studioadmin/internal/realtime"

	"github.com/gorilla/websocket"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	client *adminclient.Client
	dialer *websocket.Dialer
	out    io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  list -path PATH [-q TEXT] [-fields a,b]  - list a collection, optionally filtered")
	fmt.Fprintln(cli.out, "  create -path PATH -data JSON             - create one row")
	fmt.Fprintln(cli.out, "  delete -path PATH -id ID                 - delete one row")
	fmt.Fprintln(cli.out, "  assign-all                               - auto-assign every new application")
	fmt.Fprintln(cli.out, "  stats                                    - print dashboard stats")
	fmt.Fprintln(cli.out, "  tail-support [-for DURATION]             - print support messages as they arrive")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch args[1] {
	case "list":
		fs := cli.flagSet("list")
		path := fs.String("path", "", "collection path, e.g. groups or billing/enrollments")
		q := fs.String("q", "", "case-insensitive filter")
		fields := fs.String("fields", "name,title,subject", "comma separated fields the filter matches")
		if err := fs.Parse(args[2:]); err != nil {
			return err
		}
		if *path == "" {
			fs.Usage()
			return errHelp
		}
		return cli.list(ctx, *path, *q, strings.Split(*fields, ","))
	case "create":
		fs := cli.flagSet("create")
		path := fs.String("path", "", "collection path")
		data := fs.String("data", "", "JSON object with the new row")
		if err := fs.Parse(args[2:]); err != nil {
			return err
		}
		if *path == "" || *data == "" {
			fs.Usage()
			return errHelp
		}
		return cli.create(ctx, *path, *data)
	case "delete":
		fs := cli.flagSet("delete")
		path := fs.String("path", "", "collection path")
		id := fs.Int64("id", 0, "row id")
		if err := fs.Parse(args[2:]); err != nil {
			return err
		}
		if *path == "" || *id <= 0 {
			fs.Usage()
			return errHelp
		}
		return cli.delete(ctx, *path, *id)
	case "assign-all":
		res, err := adminclient.Post[adminclient.AssignedResponse](ctx, cli.client, "applications/auto-assign-all", nil)
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "assigned: %d\n", res.Assigned)
		return nil
	case "stats":
		stats, err := adminclient.Dashboard(ctx, cli.client)
		if err != nil {
			return err
		}
		for _, s := range stats {
			fmt.Fprintf(cli.out, "%-22s %-28s %d\n", s.Key, s.Label, s.Value)
		}
		return nil
	case "tail-support":
		fs := cli.flagSet("tail-support")
		dur := fs.Duration("for", 0, "stop after this long (0 runs until interrupted)")
		if err := fs.Parse(args[2:]); err != nil {
			return err
		}
		return cli.tailSupport(ctx, *dur)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

func (cli *commandLine) list(ctx context.Context, path, q string, fields []string) error {
	col := adminclient.NewCollection(adminclient.Records(cli.client, path, fields...), nil, nil)
	if err := col.Load(ctx); err != nil {
		return err
	}
	enc := json.NewEncoder(cli.out)
	for _, r := range col.Filter(q) {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}

func (cli *commandLine) create(ctx context.Context, path, data string) error {
	var form adminclient.Record
	if err := json.Unmarshal([]byte(data), &form); err != nil {
		return fmt.Errorf("invalid -data: %w", err)
	}
	col := adminclient.NewCollection(adminclient.Records(cli.client, path), nil, func() adminclient.Record { return adminclient.Record{} })
	col.EditForm(func(r *adminclient.Record) { *r = form })
	item, err := col.Create(ctx)
	if err != nil {
		return err
	}
	return json.NewEncoder(cli.out).Encode(item)
}

func (cli *commandLine) delete(ctx context.Context, path string, id int64) error {
	res := adminclient.Records(cli.client, path)
	if err := res.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "deleted %s/%d\n", path, id)
	return nil
}

func (cli *commandLine) tailSupport(ctx context.Context, dur time.Duration) error {
	if dur > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, dur)
		defer cancel()
	}
	inbox := adminclient.NewInbox(cli.client, nil)
	inbox.Dialer = cli.dialer
	if err := inbox.Load(ctx); err != nil {
		return err
	}
	inbox.OnIngest = func(ev realtime.SupportMessage) {
		fmt.Fprintf(cli.out, "#%d [%s] %s\n", ev.Conversation.ID, ev.Message.SenderType, ev.Message.Body)
	}
	closeFn, err := inbox.Subscribe(ctx)
	if err != nil {
		return err
	}
	defer closeFn()
	<-ctx.Done()
	return nil
}
