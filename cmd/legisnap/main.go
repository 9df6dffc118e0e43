// Command legisnap prints point-in-time snapshots of legal texts stored in a LEGI database.
//
//	legisnap structure LEGITEXT000006072050 --date 2017-01-01
//	legisnap full LEGISCTA000006177880 --dsn postgres://legi@localhost/legi
//	legisnap dates LEGITEXT000006074220 --driver sqlite --dsn legi.sqlite
//	legisnap texts --nature CODE
//	legisnap containers --nature IDCC --state VIGUEUR,VIGUEUR_ETEN
//	legisnap article LEGIARTI000033013820
//	legisnap parents LEGIARTI000033013820 --date 2017-01-01
//	legisnap config
//
// Output is JSON on stdout. Logs go to stderr.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
