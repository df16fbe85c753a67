package steps

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cucumber/godog"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/money-tracker/backend/internal/integration/persistence/model"
)

func registerFixtureSteps(ctx *godog.ScenarioContext, t *testContext) {
	// User setup steps
	ctx.Given(`^a user exists with email "([^"]*)"$`, t.aUserExistsWithEmail)
	ctx.Given(`^a verified user exists with email "([^"]*)"$`, t.aVerifiedUserExistsWithEmail)
	ctx.Given(`^I am logged in as "([^"]*)"$`, t.iAmLoggedInAs)
	ctx.Given(`^I take the latest verification token for "([^"]*)"$`, t.iTakeTheLatestVerificationTokenFor)
	ctx.Given(`^an expired verification token exists for "([^"]*)"$`, t.anExpiredVerificationTokenExistsFor)

	// Session cache steps
	ctx.When(`^the verified session cache expires$`, t.theVerifiedSessionCacheExpires)
	ctx.Then(`^the verified session of the current user should be cached$`, t.theVerifiedSessionShouldBeCached)
	ctx.Then(`^the verified session of the current user should not be cached$`, t.theVerifiedSessionShouldNotBeCached)

	// Record setup steps
	ctx.Given(`^the following records exist:$`, t.theFollowingRecordsExist)

	// Advisor setup steps
	ctx.Given(`^the advisor answers "([^"]*)"$`, t.theAdvisorAnswers)
	ctx.Given(`^the advisor fails with "([^"]*)"$`, t.theAdvisorFailsWith)
	ctx.Then(`^the advisor should have been asked (\d+) times?$`, t.theAdvisorShouldHaveBeenAsked)

	// Email steps
	ctx.When(`^the email worker processes the queue$`, t.theEmailWorkerProcessesTheQueue)
	ctx.Then(`^the email provider should have received (\d+) emails?$`, t.theEmailProviderShouldHaveReceived)
	ctx.Then(`^the email provider request (\d+) should be addressed to "([^"]*)"$`, t.theEmailProviderRequestShouldBeAddressedTo)
	ctx.Then(`^the email provider request (\d+) should use the API key "([^"]*)"$`, t.theEmailProviderRequestShouldUseTheAPIKey)

	// Database assertion steps
	ctx.Then(`^the db should contain (\d+) objects in the "([^"]*)" table$`, t.theDbShouldContainObjectsInTheTable)
	ctx.Then(`^the db should contain (\d+) objects in "([^"]*)" with the values$`, t.theDbShouldContainObjectsInWithTheValues)
}

func (t *testContext) aUserExistsWithEmail(email string) error {
	return t.createUser(email, false)
}

func (t *testContext) aVerifiedUserExistsWithEmail(email string) error {
	return t.createUser(email, true)
}

func (t *testContext) createUser(email string, verified bool) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(fixturePassword), bcrypt.MinCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &model.UserModel{
		ID:              uuid.New(),
		Email:           email,
		Name:            "Test User",
		PasswordHash:    string(hash),
		TermsAcceptedAt: now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if verified {
		user.EmailVerifiedAt = &now
	}

	if err := env.db.DbConn.Create(user).Error; err != nil {
		return err
	}
	t.currentUserID = user.ID
	return nil
}

// iAmLoggedInAs logs in through the API so tokens come from the real token service.
func (t *testContext) iAmLoggedInAs(email string) error {
	payload, _ := json.Marshal(map[string]string{"email": email, "password": fixturePassword})
	resp, err := t.client.Post(t.uri+"/api/v1/auth/login", "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("login as %s returned %d", email, resp.StatusCode)
	}

	var body struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		User         struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return err
	}

	userID, err := uuid.Parse(body.User.ID)
	if err != nil {
		return fmt.Errorf("login returned invalid user id: %w", err)
	}
	t.accessToken = body.AccessToken
	t.refreshToken = body.RefreshToken
	t.currentUserID = userID
	return nil
}

func (t *testContext) iTakeTheLatestVerificationTokenFor(email string) error {
	var token model.EmailVerificationTokenModel
	err := env.db.DbConn.
		Where("email = ? AND used = ?", email, false).
		Order("created_at DESC").
		First(&token).Error
	if err != nil {
		return fmt.Errorf("no verification token for %s: %w", email, err)
	}
	t.verificationToken = token.Token
	return nil
}

func (t *testContext) anExpiredVerificationTokenExistsFor(email string) error {
	var user model.UserModel
	if err := env.db.DbConn.Where("email = ?", email).First(&user).Error; err != nil {
		return fmt.Errorf("user not found: %w", err)
	}

	now := time.Now().UTC()
	token := &model.EmailVerificationTokenModel{
		ID:        uuid.New(),
		Token:     "expired-verification-" + uuid.NewString(),
		UserID:    user.ID,
		Email:     email,
		ExpiresAt: now.Add(-time.Hour),
		CreatedAt: now.Add(-25 * time.Hour),
	}
	if err := env.db.DbConn.Create(token).Error; err != nil {
		return err
	}
	t.verificationToken = token.Token
	return nil
}

func (t *testContext) theVerifiedSessionCacheExpires() error {
	env.redis.FastForward(env.sessionTTL + time.Minute)
	return nil
}

func (t *testContext) theVerifiedSessionShouldBeCached() error {
	if !env.redis.Exists(verifiedSessionKey + t.currentUserID.String()) {
		return fmt.Errorf("no verified session cached for %s", t.currentUserID)
	}
	return nil
}

func (t *testContext) theVerifiedSessionShouldNotBeCached() error {
	if env.redis.Exists(verifiedSessionKey + t.currentUserID.String()) {
		return fmt.Errorf("verified session still cached for %s", t.currentUserID)
	}
	return nil
}

// theFollowingRecordsExist stores rows as written, so malformed values reach the database.
// Columns: amount, category, kind, created_at. Empty kind or created_at is stored as NULL.
func (t *testContext) theFollowingRecordsExist(table *godog.Table) error {
	if len(table.Rows) < 2 {
		return errors.New("records table needs a header and at least one row")
	}

	columns := make([]string, len(table.Rows[0].Cells))
	for i, cell := range table.Rows[0].Cells {
		columns[i] = cell.Value
	}

	for _, row := range table.Rows[1:] {
		values := make(map[string]string, len(columns))
		for i, cell := range row.Cells {
			if i < len(columns) {
				values[columns[i]] = strings.TrimSpace(cell.Value)
			}
		}
		value := func(column string) string { return values[column] }

		record := &model.RecordModel{
			ID:       uuid.New(),
			UserID:   t.currentUserID,
			Amount:   value("amount"),
			Category: value("category"),
		}
		if kind := value("kind"); kind != "" {
			record.Kind = &kind
		}
		if createdAt := value("created_at"); createdAt != "" {
			at, err := time.Parse(time.RFC3339, createdAt)
			if err != nil {
				return fmt.Errorf("invalid created_at %q: %w", createdAt, err)
			}
			at = at.UTC()
			record.CreatedAt = &at
		}
		if err := env.db.DbConn.Create(record).Error; err != nil {
			return err
		}
	}
	return nil
}

func (t *testContext) theAdvisorAnswers(answer string) error {
	env.advisor.respond(answer, nil)
	return nil
}

func (t *testContext) theAdvisorFailsWith(message string) error {
	env.advisor.respond("", errors.New(message))
	return nil
}

func (t *testContext) theAdvisorShouldHaveBeenAsked(times int) error {
	if calls := env.advisor.callCount(); calls != times {
		return fmt.Errorf("expected %d advisor calls, got %d", times, calls)
	}
	return nil
}

func (t *testContext) theEmailWorkerProcessesTheQueue() error {
	env.emailWorker.ProcessNow(context.Background())
	return nil
}

func (t *testContext) theEmailProviderShouldHaveReceived(count int) error {
	if received := env.emailAPI.RequestCount("POST", resendEmailPath); received != count {
		return fmt.Errorf("expected %d emails sent, got %d", count, received)
	}
	return nil
}

func (t *testContext) theEmailProviderRequestShouldBeAddressedTo(index int, recipient string) error {
	body := env.emailAPI.GetRequestBody("POST", resendEmailPath, index)
	if body == nil {
		return fmt.Errorf("no email request at index %d", index)
	}

	to, _ := body["to"].([]any)
	for _, address := range to {
		if address == recipient {
			return nil
		}
	}
	return fmt.Errorf("email request %d was sent to %v, not %s", index, body["to"], recipient)
}

func (t *testContext) theEmailProviderRequestShouldUseTheAPIKey(index int, apiKey string) error {
	headers := env.emailAPI.GetRequestHeaders("POST", resendEmailPath, index)
	if got := headers["Authorization"]; got != "Bearer "+apiKey {
		return fmt.Errorf("email request %d sent authorization %q", index, got)
	}
	return nil
}

func (t *testContext) theDbShouldContainObjectsInTheTable(quantity int, table string) error {
	count, err := env.db.Count(table, nil)
	if err != nil {
		return err
	}
	if count != quantity {
		return fmt.Errorf("expected %d objects in '%s', got %d", quantity, table, count)
	}
	return nil
}

func (t *testContext) theDbShouldContainObjectsInWithTheValues(quantity int, table string, content *godog.DocString) error {
	var criteria map[string]any
	if err := json.Unmarshal([]byte(t.replacePlaceholders(content.Content)), &criteria); err != nil {
		return err
	}

	count, err := env.db.Count(table, criteria)
	if err != nil {
		return err
	}
	if count != quantity {
		return fmt.Errorf("expected %d objects in '%s' with criteria %v, got %d", quantity, table, criteria, count)
	}
	return nil
}

// advisorModel stands in for the hosted language model.
type advisorModel struct {
	mu     sync.Mutex
	answer string
	err    error
	calls  int
}

func (m *advisorModel) Generate(_ context.Context, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.answer, m.err
}

func (m *advisorModel) IsAvailable() bool {
	return true
}

func (m *advisorModel) respond(answer string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.answer, m.err = answer, err
}

func (m *advisorModel) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *advisorModel) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.answer, m.err, m.calls = "", nil, 0
}
