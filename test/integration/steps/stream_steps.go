package steps

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/cucumber/godog"
	"github.com/gorilla/websocket"

	"github.com/money-tracker/backend/internal/integration/entrypoint/dto"
)

const streamReadTimeout = 5 * time.Second

func registerStreamSteps(ctx *godog.ScenarioContext, t *testContext) {
	ctx.When(`^I open the live analytics stream for range "([^"]*)"$`, t.iOpenTheLiveAnalyticsStream)
	ctx.Then(`^the live stream should send total expenses of "([^"]*)"$`, t.theLiveStreamShouldSendTotalExpenses)
}

func (t *testContext) iOpenTheLiveAnalyticsStream(selector string) error {
	query := url.Values{}
	query.Set("range", selector)
	query.Set("access_token", t.accessToken)
	endpoint := "ws" + strings.TrimPrefix(t.uri, "http") + "/api/v1/analytics/live?" + query.Encode()

	conn, resp, err := websocket.DefaultDialer.Dial(endpoint, nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("live stream handshake failed with status %d: %w", resp.StatusCode, err)
		}
		return err
	}
	t.stream = conn
	return nil
}

// theLiveStreamShouldSendTotalExpenses reads messages until one carries the expected totals.
func (t *testContext) theLiveStreamShouldSendTotalExpenses(expected string) error {
	if t.stream == nil {
		return errors.New("live stream is not open")
	}

	deadline := time.Now().Add(streamReadTimeout)
	if err := t.stream.SetReadDeadline(deadline); err != nil {
		return err
	}

	var last string
	for {
		var message dto.LiveMessage
		if err := t.stream.ReadJSON(&message); err != nil {
			return fmt.Errorf("no analytics message with expenses %s (last seen %q): %w", expected, last, err)
		}
		if message.Type == dto.LiveMessageError && message.Error != nil {
			return fmt.Errorf("live stream sent error %s: %s", message.Error.Code, message.Error.Error)
		}
		if message.Data == nil {
			continue
		}
		last = message.Data.Totals.Expenses
		if last == expected {
			return nil
		}
	}
}

func (t *testContext) closeStream() {
	if t.stream == nil {
		return
	}
	_ = t.stream.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	_ = t.stream.Close()
	t.stream = nil
}
