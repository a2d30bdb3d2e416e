package config

import "github.com/urfave/cli/v3"

// Server holds configuration of the local index server
type Server struct {
	Addr string
	Root string
}

// Flags returns CLI flags for server configuration
func (c *Server) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Server address",
			Value:       "localhost:8080",
			Destination: &c.Addr,
			Sources:     cli.EnvVars("IDXGET_ADDR"),
		},
		&cli.StringFlag{
			Name:        "root",
			Usage:       "Local directory exposed as an index tree",
			Value:       ".",
			Destination: &c.Root,
			Sources:     cli.EnvVars("IDXGET_ROOT"),
		},
	}
}
