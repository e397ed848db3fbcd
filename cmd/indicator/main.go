package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
)

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "indicator",
		Usage: "Incremental EMA, MACD and RSI over bar history and live klines",
		Commands: []*cli.Command{
			{
				Name:  "replay",
				Usage: "Replay a CSV of bars (timestamp,open,high,low,close[,volume]) and print the indicators",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "bar CSV `PATH`", Required: true},
					&cli.StringFlag{Name: "symbol", Aliases: []string{"s"}, Usage: "symbol the bars belong to", Required: true},
				},
				Action: replayAction,
			},
			{
				Name:  "quotes",
				Usage: "Aggregate a CSV of quotes (timestamp,price[,volume[,session]]) into bars and print the indicators",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "quote CSV `PATH`", Required: true},
					&cli.StringFlag{Name: "symbol", Aliases: []string{"s"}, Usage: "symbol the quotes belong to", Required: true},
					&cli.StringFlag{Name: "interval", Aliases: []string{"i"}, Usage: "bar interval, defaults to FEED_INTERVAL"},
				},
				Action: quotesAction,
			},
			{
				Name:  "stream",
				Usage: "Stream Binance klines, committing closed bars and previewing forming ones",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "symbol", Aliases: []string{"s"}, Usage: "symbols to stream, defaults to FEED_SYMBOLS"},
					&cli.StringFlag{Name: "interval", Aliases: []string{"i"}, Usage: "kline interval, defaults to FEED_INTERVAL"},
				},
				Action: streamAction,
			},
			{
				Name:  "symbols",
				Usage: "Load NASDAQ Trader symbol directory files and list the securities",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "nasdaq", Usage: "nasdaqlisted.txt `PATH`"},
					&cli.StringFlag{Name: "other", Usage: "otherlisted.txt `PATH`"},
					&cli.BoolFlag{Name: "etf", Usage: "only list ETFs"},
				},
				Action: symbolsAction,
			},
		},
	}
}

func main() {
	cmd := newApp()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "indicator: %v\n", err)
		os.Exit(1)
	}
}
