package console

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/terrariumai/brains/pkg/actor"
	"github.com/terrariumai/brains/pkg/datacom"
)

// Target is the arena the console operates on
type Target interface {
	AddActor(x, y float64) (*actor.Actor, error)
	Snapshot(id string) (interface{}, bool)
	Snapshots() []interface{}
}

// Board gives the best scores
type Board interface {
	Leaderboard(n int) ([]datacom.Standing, error)
}

type command struct {
	ID   string
	Desc string
	Args []string
}

var (
	commands = []command{
		{
			"addActor",
			"Adds a passive actor at an x,y position.",
			[]string{
				"x:float",
				"y:float",
			},
		},
		{
			"getActor",
			"Gets the snapshot of an actor",
			[]string{
				"id:string",
			},
		},
		{
			"actors",
			"Lists every actor in the arena",
			nil,
		},
		{
			"leaderboard",
			"Shows the n best scores",
			[]string{
				"n:uint",
			},
		},
	}
)

// Console reads commands line by line and runs them against an arena
type Console struct {
	target Target
	board  Board
	out    io.Writer
}

// New creates a console. board may be nil.
func New(target Target, board Board, out io.Writer) *Console {
	return &Console{target: target, board: board, out: out}
}

// Start reads commands from in until it is exhausted or ctx is done
func (c *Console) Start(ctx context.Context, in io.Reader) error {
	fmt.Fprintln(c.out, "This is the arena console. Type 'help' for a list of commands")
	reader := bufio.NewScanner(in)
	for {
		fmt.Fprint(c.out, "-> ")
		if !reader.Scan() {
			return reader.Err()
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.Exec(reader.Text())
	}
}

// Exec runs a single command line
func (c *Console) Exec(line string) {
	words := strings.Fields(line)
	// Make sure something was entered
	if len(words) == 0 {
		return
	}
	entered := words[0]

	if entered == "help" {
		for _, cmd := range commands {
			fmt.Fprintf(c.out, "\t%s %v\n", cmd.ID, strings.Join(cmd.Args, " "))
			fmt.Fprintf(c.out, "\t\t%s\n\n", cmd.Desc)
		}
		return
	}

	for _, cmd := range commands {
		if entered != cmd.ID {
			continue
		}
		// Make sure all arguments exist
		if len(words)-1 != len(cmd.Args) {
			fmt.Fprintf(c.out, "\tMissing arguments.\n")
			return
		}
		c.run(cmd.ID, words[1:])
		return
	}
	fmt.Fprintf(c.out, "\tUnrecognized command\n")
}

func (c *Console) run(id string, args []string) {
	switch id {
	case "addActor":
		x, errX := strconv.ParseFloat(args[0], 64)
		y, errY := strconv.ParseFloat(args[1], 64)
		if errX != nil || errY != nil {
			fmt.Fprintf(c.out, "\tError: x and y must be numbers\n")
			return
		}
		a, err := c.target.AddActor(x, y)
		if err != nil {
			fmt.Fprintf(c.out, "\t%v\n", err)
			return
		}
		fmt.Fprintf(c.out, "\t%s\n", a.ID)
	case "getActor":
		snap, ok := c.target.Snapshot(args[0])
		if !ok {
			fmt.Fprintf(c.out, "\tNo actor with id %s\n", args[0])
			return
		}
		c.print(snap)
	case "actors":
		for _, snap := range c.target.Snapshots() {
			c.print(snap)
		}
	case "leaderboard":
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			fmt.Fprintf(c.out, "\tError: n must be a positive number\n")
			return
		}
		if c.board == nil {
			fmt.Fprintf(c.out, "\tNo leaderboard\n")
			return
		}
		standings, err := c.board.Leaderboard(n)
		if err != nil {
			fmt.Fprintf(c.out, "\t%v\n", err)
			return
		}
		for i, s := range standings {
			fmt.Fprintf(c.out, "\t%d. %s %d\n", i+1, s.ID, s.Score)
		}
	}
}

func (c *Console) print(v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		fmt.Fprintf(c.out, "\t%v\n", err)
		return
	}
	fmt.Fprintf(c.out, "\t%s\n", b)
}
