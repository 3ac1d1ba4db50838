package inngest

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/inngest/inngestgo"
	"github.com/inngest/inngestgo/step"
	"github.com/psdleague/psdl-bot/internal/match"
)

// New creates the durable-function client and registers the result
// reminder function.
func New(inngestClient inngestgo.Client, matches match.Service) InngestClient {
	c := &client{
		inngestClient: inngestClient,
	}
	c.createResultReminderFunction(matches)
	return c
}

// createResultReminderFunction nudges a lobby that has been sitting in
// the ongoing state without a reported result.
func (i *client) createResultReminderFunction(matches match.Service) inngestgo.ServableFunction {
	config := inngestgo.FunctionOpts{
		ID:   "result-reminder",
		Name: "Remind captains to report a result",
	}
	f, err := inngestgo.CreateFunction(
		i.inngestClient,
		config,
		inngestgo.EventTrigger(EventTeamsReady, nil),
		func(ctx context.Context, input inngestgo.Input[map[string]any]) (any, error) {
			matchID, _ := input.Event.Data["matchId"].(string)

			step.Sleep(ctx, "wait-for-result", 2*time.Hour)

			_, err := step.Run(ctx, "check-still-ongoing", func(ctx context.Context) (string, error) {
				ongoing, err := matches.GetOngoingMatches()
				if err != nil {
					return "", err
				}
				for _, m := range ongoing {
					if m.ID == matchID {
						log.Warn("Match still awaiting a result", "matchID", matchID, "lobby", m.LobbyName)
						return "pending", nil
					}
				}
				return "resolved", nil
			})
			if err != nil {
				return nil, err
			}

			return "OK", nil
		},
	)
	if err != nil {
		log.Fatal("Failed to create function", "error", err)
	}
	return f
}

func (i *client) Serve() http.Handler {
	return i.inngestClient.Serve()
}

func (i *client) SendEvent(name string, data map[string]any) {
	i.inngestClient.Send(context.Background(), inngestgo.Event{Name: name, Data: data})
}
