package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/Undertone0809/ecjtu/internal/app"
)

func main() {
	cliApp := &cli.App{
		Name:    "ecjtu",
		Usage:   "HTTP API bridging the ECJTU CAS and JWXT portals",
		Version: app.BuildVersion,
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "run the API server",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "port",
						Usage:   "HTTP listen port",
						EnvVars: []string{"PORT"},
						Value:   8080,
					},
					&cli.StringFlag{
						Name:    "db",
						Usage:   "path to the SQLite session database",
						EnvVars: []string{"ECJTU_DATABASE_FILE"},
						Value:   "ecjtu.db",
					},
					&cli.StringFlag{
						Name:    "master-key",
						Usage:   "path to the token signing master key file",
						EnvVars: []string{"ECJTU_MASTER_KEY_FILE"},
						Value:   "master.key",
					},
				},
				Action: func(c *cli.Context) error {
					cfg := app.LoadConfig()
					cfg.Port = c.Int("port")
					cfg.DatabaseFile = c.String("db")
					cfg.MasterKeyFile = c.String("master-key")

					application, err := app.New(cfg)
					if err != nil {
						return err
					}
					return application.Run()
				},
			},
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatalf("application error: %v", err)
	}
}
