// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common/math"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/transcranial/tcs/api"
	apistaking "github.com/transcranial/tcs/api/staking"
	"github.com/transcranial/tcs/builtin/staking/payoutqueue"
	"github.com/transcranial/tcs/cmd/tcs/httpserver"
	"github.com/transcranial/tcs/engine"
	"github.com/transcranial/tcs/genesis"
	"github.com/transcranial/tcs/log"
	"github.com/transcranial/tcs/metrics"
	"github.com/transcranial/tcs/tcs"
)

var (
	version   string
	gitCommit string
	gitTag    string
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Version = fullVersion()
	app.Name = "tcs"
	app.Usage = "Staking ledger with proportional rewards and a FIFO payout queue"
	app.Flags = append(storeFlags,
		persistFlag,
		apiAddrFlag,
		apiCorsFlag,
		apiLogsLimitFlag,
		enableAPILogsFlag,
		enableAdminFlag,
		enableMetricsFlag,
		metricsAddrFlag,
	)
	app.Action = defaultAction
	app.Commands = []cli.Command{
		{
			Name:   "status",
			Usage:  "print ledger totals, reward rate and parameters",
			Flags:  storeFlags,
			Action: statusAction,
		},
		{
			Name:   "account",
			Usage:  "print the staked balance, pending rewards and roles of an account",
			Flags:  append(storeFlags, accountFlag),
			Action: accountAction,
		},
		{
			Name:   "queue",
			Usage:  "list queued payouts in order",
			Flags:  storeFlags,
			Action: queueAction,
		},
		{
			Name:   "deposit",
			Usage:  "stake an amount for an account, paid by the caller",
			Flags:  append(storeFlags, callerFlag, accountFlag, amountFlag),
			Action: depositAction,
		},
		{
			Name:   "withdraw",
			Usage:  "unstake an amount and queue its payout together with the pending rewards",
			Flags:  append(storeFlags, callerFlag, accountFlag, amountFlag),
			Action: withdrawAction,
		},
		{
			Name:   "claim",
			Usage:  "queue the pending rewards of an account",
			Flags:  append(storeFlags, callerFlag, accountFlag),
			Action: claimAction,
		},
		{
			Name:   "income",
			Usage:  "distribute income paid by the caller to all stakers",
			Flags:  append(storeFlags, callerFlag, amountFlag),
			Action: incomeAction,
		},
		{
			Name:   "payout",
			Usage:  "pay queued entries while liquidity allows",
			Flags:  storeFlags,
			Action: payoutAction,
		},
	}
	return app
}

func defaultAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()

	defer func() { log.Info("exited") }()

	logLevel := initLogger(ctx)

	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	l, err := openLedger(ctx, ctx.BoolT(persistFlag.Name))
	if err != nil {
		return err
	}
	defer l.Close()

	opts := api.Options{
		AllowedOrigins:  ctx.String(apiCorsFlag.Name),
		LogsLimit:       ctx.Uint64(apiLogsLimitFlag.Name),
		EnableReqLogger: ctx.Bool(enableAPILogsFlag.Name),
		EnableMetrics:   ctx.Bool(enableMetricsFlag.Name),
	}
	if ctx.Bool(enableAdminFlag.Name) {
		opts.LogLevel = logLevel
	}

	apiHandler, apiCloser := api.New(l.engine, opts)
	defer func() { log.Info("closing subscriptions..."); apiCloser() }()

	apiURL, srvCloser, err := httpserver.StartAPIServer(ctx.String(apiAddrFlag.Name), apiHandler, 10*time.Second)
	if err != nil {
		return err
	}
	defer func() { log.Info("stopping API server..."); srvCloser() }()

	metricsURL := ""
	if ctx.Bool(enableMetricsFlag.Name) {
		url, closeFunc, err := httpserver.StartMetricsServer(ctx.String(metricsAddrFlag.Name))
		if err != nil {
			return fmt.Errorf("unable to start metrics server - %w", err)
		}
		metricsURL = url
		defer func() { log.Info("stopping metrics server..."); closeFunc() }()
	}

	printStartupMessage(l, apiURL, metricsURL)

	<-exitSignal.Done()
	return nil
}

func printStartupMessage(l *ledger, apiURL, metricsURL string) {
	if metricsURL == "" {
		metricsURL = "Disabled"
	}
	fmt.Printf(`Starting %v
    Data dir    [ %v ]
    API portal  [ %v ]
    Metrics     [ %v ]
`,
		"tcs "+fullVersion(),
		l.dataDir,
		apiURL,
		metricsURL)
}

// withEngine opens the persisted ledger, runs fn and prints its result.
func withEngine(ctx *cli.Context, fn func(eng *engine.Engine) (any, error)) error {
	initLogger(ctx)

	l, err := openLedger(ctx, true)
	if err != nil {
		return err
	}
	defer l.Close()

	result, err := fn(l.engine)
	if err != nil {
		return err
	}
	return printJSON(ctx.App.Writer, result)
}

func defaultCaller() tcs.Address {
	return genesis.DevAccounts()[0].Address
}

func statusAction(ctx *cli.Context) error {
	return withEngine(ctx, func(eng *engine.Engine) (any, error) {
		status, err := eng.Status()
		if err != nil {
			return nil, err
		}
		return apistaking.ConvertStatus(status), nil
	})
}

func accountAction(ctx *cli.Context) error {
	addr, err := parseAddress(ctx, accountFlag, defaultCaller())
	if err != nil {
		return err
	}
	return withEngine(ctx, func(eng *engine.Engine) (any, error) {
		acc, err := eng.Account(addr)
		if err != nil {
			return nil, err
		}
		return apistaking.ConvertAccount(acc), nil
	})
}

func queueAction(ctx *cli.Context) error {
	return withEngine(ctx, func(eng *engine.Engine) (any, error) {
		entries, err := eng.PayoutQueue()
		if err != nil {
			return nil, err
		}
		return apistaking.ConvertEntries(entries), nil
	})
}

// callerAndAccount reads the caller and the target account, which defaults to the caller.
func callerAndAccount(ctx *cli.Context) (caller, account tcs.Address, err error) {
	if caller, err = parseAddress(ctx, callerFlag, defaultCaller()); err != nil {
		return
	}
	account, err = parseAddress(ctx, accountFlag, caller)
	return
}

func depositAction(ctx *cli.Context) error {
	caller, account, err := callerAndAccount(ctx)
	if err != nil {
		return err
	}
	amount, err := parseAmount(ctx)
	if err != nil {
		return err
	}
	return withEngine(ctx, func(eng *engine.Engine) (any, error) {
		if err := eng.Deposit(caller, account, amount); err != nil {
			return nil, err
		}
		acc, err := eng.Account(account)
		if err != nil {
			return nil, err
		}
		return apistaking.ConvertAccount(acc), nil
	})
}

func withdrawAction(ctx *cli.Context) error {
	caller, account, err := callerAndAccount(ctx)
	if err != nil {
		return err
	}
	amount, err := parseAmount(ctx)
	if err != nil {
		return err
	}
	return withEngine(ctx, func(eng *engine.Engine) (any, error) {
		entry, err := eng.Withdraw(caller, account, amount)
		if err != nil {
			return nil, err
		}
		return apistaking.ConvertEntries([]*payoutqueue.Entry{entry})[0], nil
	})
}

func claimAction(ctx *cli.Context) error {
	caller, account, err := callerAndAccount(ctx)
	if err != nil {
		return err
	}
	return withEngine(ctx, func(eng *engine.Engine) (any, error) {
		claimed, err := eng.ClaimRewards(caller, account)
		if err != nil {
			return nil, err
		}
		return &apistaking.Claimed{Amount: (*math.HexOrDecimal256)(claimed)}, nil
	})
}

func incomeAction(ctx *cli.Context) error {
	caller, err := parseAddress(ctx, callerFlag, defaultCaller())
	if err != nil {
		return err
	}
	amount, err := parseAmount(ctx)
	if err != nil {
		return err
	}
	return withEngine(ctx, func(eng *engine.Engine) (any, error) {
		dist, err := eng.ClaimIncome(caller, amount)
		if err != nil {
			return nil, err
		}
		return apistaking.ConvertDistribution(dist), nil
	})
}

func payoutAction(ctx *cli.Context) error {
	return withEngine(ctx, func(eng *engine.Engine) (any, error) {
		paid, err := eng.PayoutFunds()
		if err != nil {
			return nil, err
		}
		return apistaking.ConvertEntries(paid), nil
	})
}
