package main

import (
	"context"
	"os"

	"github.com/dmitrijs2005/medmind-auth/internal/admincli"
	"github.com/dmitrijs2005/medmind-auth/internal/server/config"
)

func main() {
	cfg := config.LoadConfig()
	app := admincli.NewApp(cfg, os.Stdin, os.Stdout)
	os.Exit(app.Run(context.Background(), commandArgs(os.Args[1:])))
}

// commandArgs drops the server configuration flags (-c, -a, -d, -s, -u, -l)
// that precede the command name.
func commandArgs(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] != '-' && (i == 0 || !takesValue(args[i-1])) {
			return args[i:]
		}
	}
	return nil
}

func takesValue(flag string) bool {
	switch flag {
	case "-c", "-config", "--config", "-a", "-d", "-s", "-u", "-l":
		return true
	}
	return false
}
