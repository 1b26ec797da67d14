package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"gridtrader/pkg/gridtrader"
)

const version = "0.1.0"

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: gridtrader-cli <command> [options]\n\n")
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  version     Print the CLI version\n")
	fmt.Fprintf(os.Stderr, "  levels      Compute grid levels for a price band\n")
	fmt.Fprintf(os.Stderr, "  strategies  List stored strategies\n")
	fmt.Fprintf(os.Stderr, "  backtest    Run a backtest for a stored strategy\n")
	fmt.Fprintf(os.Stderr, "\n")
}

func main() {
	flag.Usage = usage

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	serverURL := os.Getenv("GRIDTRADER_SERVER")
	if serverURL == "" {
		serverURL = "http://localhost:5001"
	}
	client := gridtrader.NewClient(serverURL)
	ctx := context.Background()

	switch os.Args[1] {
	case "version":
		fmt.Printf("gridtrader-cli %s\n", version)

	case "levels":
		fs := flag.NewFlagSet("levels", flag.ExitOnError)
		symbol := fs.String("symbol", "", "stock symbol")
		lower := fs.Float64("lower", 0, "lower band price")
		upper := fs.Float64("upper", 0, "upper band price")
		grids := fs.Int("grids", 10, "number of grid cells")
		investment := fs.Float64("investment", 10000, "total investment amount")
		fs.Parse(os.Args[2:])

		resp, err := client.CalculateGrid(ctx, gridtrader.GridParams{
			Symbol:           *symbol,
			LowerPrice:       *lower,
			UpperPrice:       *upper,
			NumGrids:         *grids,
			InvestmentAmount: *investment,
		})
		if err != nil {
			fatalf("calculating grid: %v", err)
		}
		fmt.Printf("%s  band [%.2f, %.2f]  %d grids  spacing %.2f\n",
			resp.Symbol, resp.LowerPrice, resp.UpperPrice, resp.NumGrids, resp.GridSpacing)
		for _, c := range resp.Cells {
			fmt.Printf("  cell %2d  buy %8.2f  sell %8.2f  cash %10.2f  profit %8.2f\n",
				c.Level, c.BuyPrice, c.SellPrice, c.AllocatedCash, c.ProfitPotential)
		}

	case "strategies":
		fs := flag.NewFlagSet("strategies", flag.ExitOnError)
		fs.Parse(os.Args[2:])

		list, err := client.ListStrategies(ctx)
		if err != nil {
			fatalf("listing strategies: %v", err)
		}
		if len(list) == 0 {
			fmt.Println("no strategies")
			return
		}
		for _, s := range list {
			fmt.Printf("%4d  %-6s  [%.2f, %.2f]  %d grids  $%.2f  %s\n",
				s.ID, s.Symbol, s.LowerPrice, s.UpperPrice, s.NumGrids,
				s.InvestmentAmount, s.CreatedAt.Format("2006-01-02"))
		}

	case "backtest":
		fs := flag.NewFlagSet("backtest", flag.ExitOnError)
		id := fs.Int64("strategy", 0, "strategy ID")
		start := fs.String("start", "", "start date (YYYY-MM-DD)")
		end := fs.String("end", "", "end date (YYYY-MM-DD)")
		fs.Parse(os.Args[2:])

		if *id == 0 || *start == "" || *end == "" {
			fatalf("backtest requires -strategy, -start, and -end")
		}
		result, err := client.RunBacktest(ctx, *id, *start, *end)
		if err != nil {
			fatalf("running backtest: %v", err)
		}
		m := result.Metrics
		fmt.Printf("backtest %d  %s  %s to %s  (%d days)\n",
			result.ID, result.Strategy.Symbol,
			result.Period.Start.Format("2006-01-02"), result.Period.End.Format("2006-01-02"),
			result.Period.Days)
		fmt.Printf("  return       %8.2f%%  (annualized %.2f%%)\n", m.TotalReturnPct, m.AnnualizedReturnPct)
		fmt.Printf("  max drawdown %8.2f%%\n", m.MaxDrawdownPct)
		fmt.Printf("  sharpe       %8.2f\n", m.SharpeRatio)
		fmt.Printf("  trades       %8d  (%d buys, %d sells, profit %.2f)\n",
			m.NumTrades, m.BuyTrades, m.SellTrades, m.TradeProfit)

	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		usage()
		os.Exit(1)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
