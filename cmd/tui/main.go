package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	client_channel "github.com/avoronov/quorum/core/internal/client/channel"
	client_session "github.com/avoronov/quorum/core/internal/client/session"
	client_state "github.com/avoronov/quorum/core/internal/client/state"
	client_store "github.com/avoronov/quorum/core/internal/client/store"
	"github.com/avoronov/quorum/core/internal/config"
	"github.com/avoronov/quorum/core/internal/model"
)

type cli struct {
	cfg        config.Client
	store      *client_store.Client
	controller *client_session.Controller
	user       model.User
	scanner    *bufio.Scanner
}

func main() {
	cfg := config.Load()

	c := &cli{
		cfg:     cfg.Client,
		store:   client_store.New(cfg.Client.BaseURL),
		scanner: bufio.NewScanner(os.Stdin),
	}

	fmt.Println("quorum - realtime card voting")
	fmt.Println("commands: create | join CODE NAME | card TITLE ; DESCRIPTION | vote N yes|no | show | close | leave | quit")

	for {
		fmt.Print("> ")
		if !c.scanner.Scan() {
			return
		}
		line := strings.TrimSpace(c.scanner.Text())
		if line == "" {
			continue
		}

		if err := c.dispatch(line); err != nil {
			fmt.Println("error:", err)
		}
		if line == "quit" {
			return
		}
	}
}

func (c *cli) dispatch(line string) error {
	fields := strings.Fields(line)
	ctx := context.Background()

	switch fields[0] {
	case "create":
		return c.create(ctx)
	case "join":
		if len(fields) < 3 {
			return fmt.Errorf("usage: join CODE NAME")
		}
		return c.join(ctx, fields[1], strings.Join(fields[2:], " "))
	case "card":
		return c.card(ctx, strings.TrimSpace(strings.TrimPrefix(line, "card")))
	case "vote":
		if len(fields) != 3 {
			return fmt.Errorf("usage: vote N yes|no")
		}
		return c.vote(ctx, fields[1], fields[2])
	case "show":
		c.show()
		return nil
	case "close":
		return c.close(ctx)
	case "leave", "quit":
		c.leave()
		return nil
	default:
		return fmt.Errorf("unknown command %q", fields[0])
	}
}

func (c *cli) create(ctx context.Context) error {
	session, err := c.store.CreateSession(ctx)
	if err != nil {
		return err
	}
	fmt.Println("session created, access code:", session.AccessCode)
	return nil
}

func (c *cli) join(ctx context.Context, code, name string) error {
	if c.controller != nil {
		c.leave()
	}

	user, err := c.store.JoinSession(ctx, code, name, false)
	if err != nil {
		return err
	}
	session, err := c.store.SessionByCode(ctx, code)
	if err != nil {
		return err
	}

	c.user = user
	channel := client_channel.New(c.cfg.WSURL, session.ID)
	c.controller = client_session.New(c.store, channel, user, session,
		client_session.WithOnChange(func(snapshot client_state.Snapshot) {
			// Live updates land between prompts; keep them terse.
			fmt.Printf("\r[update] %d cards, %d tallies\n> ", len(snapshot.Cards), len(snapshot.Tally))
		}),
	)

	if err := c.controller.Enter(ctx); err != nil {
		c.controller = nil
		return err
	}

	fmt.Printf("joined session %s as %s\n", code, user.Name)
	c.show()
	return nil
}

func (c *cli) card(ctx context.Context, args string) error {
	if c.controller == nil {
		return fmt.Errorf("join a session first")
	}

	title, description, _ := strings.Cut(args, ";")
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if title == "" {
		return fmt.Errorf("usage: card TITLE ; DESCRIPTION")
	}

	card, err := c.store.CreateCard(ctx, c.controller.Session().AccessCode, title, description)
	if err != nil {
		return err
	}
	fmt.Println("card added:", card.Title)
	return nil
}

func (c *cli) vote(ctx context.Context, indexArg, choiceArg string) error {
	if c.controller == nil {
		return fmt.Errorf("join a session first")
	}

	index, err := strconv.Atoi(indexArg)
	if err != nil {
		return fmt.Errorf("card number must be an integer")
	}

	var choice model.Choice
	switch choiceArg {
	case "yes", "y":
		choice = model.ChoiceYes
	case "no", "n":
		choice = model.ChoiceNo
	default:
		return fmt.Errorf("choice must be yes or no")
	}

	snapshot := c.controller.Snapshot()
	if index < 1 || index > len(snapshot.Cards) {
		return fmt.Errorf("no card %d", index)
	}

	return c.controller.SubmitVote(ctx, snapshot.Cards[index-1].ID, choice)
}

func (c *cli) show() {
	if c.controller == nil {
		fmt.Println("not in a session")
		return
	}

	snapshot := c.controller.Snapshot()
	if len(snapshot.Cards) == 0 {
		fmt.Println("no cards yet")
		return
	}

	for i, card := range snapshot.Cards {
		tally := snapshot.Tally[card.ID]
		own := "-"
		if choice, ok := snapshot.OwnVotes[card.ID]; ok {
			if choice {
				own = "yes"
			} else {
				own = "no"
			}
		}
		fmt.Printf("%2d. %-30s yes:%-3d no:%-3d (you: %s)\n", i+1, card.Title, tally.Yes, tally.No, own)
	}
}

func (c *cli) close(ctx context.Context) error {
	if c.controller == nil {
		return fmt.Errorf("join a session first")
	}
	return c.store.CloseSession(ctx, c.controller.Session().AccessCode)
}

func (c *cli) leave() {
	if c.controller == nil {
		return
	}
	c.controller.Leave()
	c.controller = nil
	fmt.Println("left session")
}
