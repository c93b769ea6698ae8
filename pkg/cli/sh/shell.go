package sh

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/livelamp/pkg/api"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool

	Shell  *ishell.Shell
	Client *api.Client
}

const (
	shellKey = "$shell"
)

var (
	// flags

	evalOnly   bool
	outputJSON bool
	lampAddr   = "localhost:80"

	// commands
	commands []*ishell.Cmd
)

func init() {
	if val := os.Getenv("LIVELAMP_ADDR"); val != "" {
		lampAddr = val
	}
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
	flag.StringVar(&lampAddr, "addr", lampAddr, "Lamp HTTP address or URL.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(client *api.Client) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:  ishell.New(),
		Client: client,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(fmt.Sprintf("%s > ", strings.TrimPrefix(client.BaseURL, "http://")))
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// Format renders a reply for display.
func Format(v interface{}, asJSON bool) (string, error) {
	var out []byte
	var err error
	if asJSON {
		out, err = json.Marshal(v)
	} else {
		out, err = json.MarshalIndent(v, "", "  ")
	}
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Do runs a request and prints its reply.
func Do(c *ishell.Context, fn func(*api.Client) (interface{}, error)) error {
	s := ShellFrom(c)
	v, err := fn(s.Client)
	if err != nil {
		c.Err(err)
		return err
	}
	out, err := Format(v, s.OutputJSON)
	if err != nil {
		c.Err(err)
		return err
	}
	c.Println(out)
	return nil
}

// ParseOnOff parses a switch argument.
func ParseOnOff(arg string) (bool, error) {
	switch strings.ToLower(arg) {
	case "on", "1", "true", "yes":
		return true, nil
	case "off", "0", "false", "no":
		return false, nil
	}
	return false, fmt.Errorf("expect on or off, got %q", arg)
}

// ParseInts parses integer arguments.
func ParseInts(args []string) ([]int, error) {
	vals := make([]int, len(args))
	for n, arg := range args {
		v, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", arg)
		}
		vals[n] = v
	}
	return vals, nil
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New(api.NewClient(lampAddr)).Run(flag.Args()...)
}
