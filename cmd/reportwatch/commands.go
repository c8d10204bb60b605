package main

import (
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"

	"github.com/cuemby/reportwatch/pkg/config"
	"github.com/cuemby/reportwatch/pkg/display"
	"github.com/cuemby/reportwatch/pkg/registry"
	"github.com/cuemby/reportwatch/pkg/types"
)

// controller is the part of the manager the console drives
type controller interface {
	Connect(host string, port uint16)
	Disconnect()
	Update()
	State() types.ConnectionState
	Versions() types.Versions
}

// console executes the line commands typed while watching
type console struct {
	ctl      controller
	settings *config.Settings
	registry *registry.Registry
	filter   *display.Filter
	out      io.Writer

	host string
	port uint16
}

const consoleHelp = `Commands:
  connect [HOST[:PORT]]   connect, or reconnect elsewhere
  disconnect              close the session
  update                  fetch now
  source announcements|reports
  interval SECONDS        auto-refresh interval
  auto on|off             toggle auto-refresh
  filter [TEXT]           show only events containing TEXT
  enable NAME...|all      show categories
  disable NAME...|all     hide categories
  categories              list categories
  status                  show the session state
  quit                    exit
`

// exec runs one command line. It returns true when the console should exit.
func (c *console) exec(line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "quit", "exit":
		return true, nil

	case "help", "?":
		fmt.Fprint(c.out, consoleHelp)

	case "connect":
		if len(args) > 1 {
			return false, fmt.Errorf("usage: connect [HOST[:PORT]]")
		}
		if len(args) == 1 {
			host, port, err := parseTarget(args[0], c.port)
			if err != nil {
				return false, err
			}
			c.host, c.port = host, port
		}
		c.ctl.Connect(c.host, c.port)

	case "disconnect":
		c.ctl.Disconnect()

	case "update", "refresh":
		c.ctl.Update()

	case "source":
		if len(args) != 1 {
			return false, fmt.Errorf("usage: source announcements|reports")
		}
		source, err := types.ParseSource(args[0])
		if err != nil {
			return false, err
		}
		c.settings.SetSource(source)

	case "interval":
		if len(args) != 1 {
			return false, fmt.Errorf("usage: interval SECONDS")
		}
		seconds, err := strconv.ParseFloat(args[0], 64)
		if err != nil || seconds <= 0 {
			return false, fmt.Errorf("interval must be a positive number of seconds")
		}
		c.settings.SetInterval(seconds)

	case "auto":
		if len(args) != 1 {
			return false, fmt.Errorf("usage: auto on|off")
		}
		switch strings.ToLower(args[0]) {
		case "on":
			c.settings.SetAutoRefresh(true)
		case "off":
			c.settings.SetAutoRefresh(false)
		default:
			return false, fmt.Errorf("usage: auto on|off")
		}

	case "filter":
		c.filter.SetText(strings.Join(args, " "))

	case "enable", "disable":
		if len(args) == 0 {
			return false, fmt.Errorf("usage: %s NAME...|all", cmd)
		}
		return false, setCategories(c.registry, args, cmd == "enable")

	case "categories":
		display.PrintCategories(c.out, c.registry.Categories())

	case "status":
		state := c.ctl.State()
		fmt.Fprintf(c.out, "%s (%s:%d)\n", state, c.host, c.port)
		if state == types.StateConnected {
			v := c.ctl.Versions()
			fmt.Fprintf(c.out, "server %s, game %s\n", v.Server, v.Game)
		}
		fmt.Fprintf(c.out, "source %s, auto-refresh %t every %gs\n",
			c.settings.Source(), c.settings.AutoRefresh(), c.settings.Interval())

	default:
		return false, fmt.Errorf("unknown command %q, try 'help'", cmd)
	}
	return false, nil
}

// setCategories changes the flag of the named categories, or all of them
func setCategories(reg *registry.Registry, names []string, enabled bool) error {
	if len(names) == 1 && strings.EqualFold(names[0], "all") {
		reg.SetAll(enabled)
		return nil
	}
	var unknown []string
	for _, name := range names {
		if !reg.SetEnabledByName(name, enabled) {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("unknown categories: %s", strings.Join(unknown, ", "))
	}
	return nil
}

// parseTarget parses "host" or "host:port"
func parseTarget(target string, defaultPort uint16) (string, uint16, error) {
	host, portStr, err := net.SplitHostPort(target)
	if err != nil {
		// No port given.
		return target, defaultPort, nil
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil || port == 0 {
		return "", 0, fmt.Errorf("invalid port %q", portStr)
	}
	return host, uint16(port), nil
}
