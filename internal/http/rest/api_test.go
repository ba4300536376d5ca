package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/bwise1/upzunction/config"
	"github.com/bwise1/upzunction/internal/account"
	"github.com/bwise1/upzunction/internal/board"
	deps "github.com/bwise1/upzunction/internal/debs"
	"github.com/bwise1/upzunction/internal/logger"
	"github.com/bwise1/upzunction/internal/metrics"
	"github.com/bwise1/upzunction/internal/model"
	"github.com/bwise1/upzunction/internal/realtime"
	"github.com/bwise1/upzunction/internal/repository/memory"
)

const testPassword = "bright-lantern-42"

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(ctx context.Context, subject, body string, to ...string) error {
	args := m.Called(ctx, subject, body, to)
	return args.Error(0)
}

type envelope struct {
	Message string          `json:"message"`
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
}

type APISuite struct {
	suite.Suite
	store  *memory.Store
	deps   *deps.Dependencies
	server *httptest.Server
	cancel context.CancelFunc
	gomti  model.Location
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}

func (s *APISuite) SetupTest() {
	s.store = memory.New()
	s.gomti = s.store.AddLocation("Gomti Nagar", "Lucknow")

	sender := new(mockSender)
	sender.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	hub := realtime.NewHub(logger.Nop())

	listings := board.NewListingService(board.ListingServiceConfig{
		Listings:  s.store,
		Messages:  s.store,
		Locations: s.store,
		Tx:        s.store,
		Metrics:   m,
		City:      "Lucknow",
	})
	accounts := account.NewService(account.Config{
		Users:    s.store,
		Profiles: s.store,
		Tx:       s.store,
		Sessions: account.NewMemorySessionStore(),
		Mail:     sender,
	})
	accounts.GenerateOTP = func() (string, error) { return "123456", nil }

	s.deps = &deps.Dependencies{
		Hub:      hub,
		Registry: registry,
		Metrics:  m,
		Listings: listings,
		Contacts: board.NewContactService(board.ContactServiceConfig{
			Listings: s.store,
			Messages: s.store,
			Tx:       s.store,
			Notifier: hub,
			Metrics:  m,
		}),
		Visits:   board.NewVisitCounter(s.store, m),
		Accounts: accounts,
	}

	var ctx context.Context
	ctx, s.cancel = context.WithCancel(context.Background())
	go hub.Run(ctx)

	a := &API{
		Config: &config.Config{JwtSecret: "test-secret", JwtExpires: "1h"},
		Deps:   s.deps,
		Logger: logger.Nop(),
	}
	s.server = httptest.NewServer(a.setUpServerHandler())
}

func (s *APISuite) TearDownTest() {
	s.server.Close()
	s.cancel()
}

func (s *APISuite) do(method, path, token string, body any) (int, envelope) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, s.server.URL+path, reader)
	s.Require().NoError(err)
	req.Header.Set("X-Request-Source", "test")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	var env envelope
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func (s *APISuite) signUp(username, email string) (string, model.LoginUserResponse) {
	code, env := s.do(http.MethodPost, "/auth/register", "", model.RegisterRequest{Username: username, Email: email})
	s.Require().Equal(http.StatusOK, code, env.Message)
	var session model.OTPSessionResponse
	s.Require().NoError(json.Unmarshal(env.Data, &session))

	code, env = s.do(http.MethodPost, "/auth/register/verify", "", model.RegisterVerifyRequest{
		SessionID: session.SessionID,
		OTP:       "123456",
		Password:  testPassword,
		Password2: testPassword,
	})
	s.Require().Equal(http.StatusCreated, code, env.Message)
	var login model.LoginResponse
	s.Require().NoError(json.Unmarshal(env.Data, &login))
	s.Require().NotEmpty(login.Token)
	return login.Token, *login.User
}

func (s *APISuite) postListing(token string, req model.ListingRequest) model.Listing {
	code, env := s.do(http.MethodPost, "/listings", token, req)
	s.Require().Equal(http.StatusCreated, code, env.Message)
	var listing model.Listing
	s.Require().NoError(json.Unmarshal(env.Data, &listing))
	return listing
}

func (s *APISuite) TestRequestSourceIsRequired() {
	resp, err := http.Get(s.server.URL + "/")
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *APISuite) TestResponsesCarryRequestID() {
	req, err := http.NewRequest(http.MethodGet, s.server.URL+"/locations", nil)
	s.Require().NoError(err)
	req.Header.Set("X-Request-Source", "test")
	req.Header.Set("X-Request-ID", "req-42")

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("req-42", resp.Header.Get("X-Request-ID"))
}

func (s *APISuite) TestLogin() {
	s.signUp("asha", "asha@example.com")

	code, env := s.do(http.MethodPost, "/auth/login", "", model.LoginRequest{Username: "asha@example.com", Password: testPassword})
	s.Equal(http.StatusOK, code, env.Message)

	code, env = s.do(http.MethodPost, "/auth/login", "", model.LoginRequest{Username: "asha", Password: "wrong-password"})
	s.Equal(http.StatusUnauthorized, code)
	s.Equal("Please enter a correct username and password.", env.Message)
}

func (s *APISuite) TestListingRoutesRequireLogin() {
	code, _ := s.do(http.MethodPost, "/listings", "", model.ListingRequest{Title: "Bicycle", Description: "Barely used"})
	s.Equal(http.StatusUnauthorized, code)

	code, _ = s.do(http.MethodGet, "/dashboard", "not-a-token", nil)
	s.Equal(http.StatusUnauthorized, code)
}

func (s *APISuite) TestFeed() {
	token, _ := s.signUp("asha", "asha@example.com")
	general := s.postListing(token, model.ListingRequest{Title: "Bicycle", Description: "Barely used"})
	local := s.postListing(token, model.ListingRequest{
		Title:              "Tutor needed",
		Description:        "Class 10 maths",
		LocationID:         &s.gomti.ID,
		IsLocationSpecific: true,
	})

	code, env := s.do(http.MethodGet, "/", "", nil)
	s.Require().Equal(http.StatusOK, code)
	var feed model.FeedResponse
	s.Require().NoError(json.Unmarshal(env.Data, &feed))
	s.Require().Len(feed.Listings, 1)
	s.Equal(general.ID, feed.Listings[0].ID)
	s.Len(feed.Locations, 1)
	s.Nil(feed.CurrentLocationID)

	code, env = s.do(http.MethodGet, "/?location="+jsonNumber(s.gomti.ID), "", nil)
	s.Require().Equal(http.StatusOK, code)
	feed = model.FeedResponse{}
	s.Require().NoError(json.Unmarshal(env.Data, &feed))
	s.Require().Len(feed.Listings, 1)
	s.Equal(local.ID, feed.Listings[0].ID)
	s.Require().NotNil(feed.CurrentLocationID)
	s.Equal(s.gomti.ID, *feed.CurrentLocationID)

	code, _ = s.do(http.MethodGet, "/?location=gomti", "", nil)
	s.Equal(http.StatusBadRequest, code)
}

func (s *APISuite) TestListingLifecycle() {
	asha, _ := s.signUp("asha", "asha@example.com")
	ravi, _ := s.signUp("ravi", "ravi@example.com")
	listing := s.postListing(asha, model.ListingRequest{Title: "Bicycle", Description: "Barely used"})
	path := "/listings/" + listing.ID.String()

	code, env := s.do(http.MethodPut, path, asha, model.ListingRequest{Title: "Red bicycle", Description: "Barely used"})
	s.Require().Equal(http.StatusOK, code, env.Message)
	var edited model.Listing
	s.Require().NoError(json.Unmarshal(env.Data, &edited))
	s.Equal("Red bicycle", edited.Title)
	s.True(listing.ExpiresAt.Equal(edited.ExpiresAt))

	code, _ = s.do(http.MethodPut, path, ravi, model.ListingRequest{Title: "Mine now", Description: "x"})
	s.Equal(http.StatusForbidden, code)

	code, _ = s.do(http.MethodPost, path+"/deactivate", asha, nil)
	s.Equal(http.StatusOK, code)
	code, _ = s.do(http.MethodPost, path+"/deactivate", asha, nil)
	s.Equal(http.StatusOK, code)

	code, _ = s.do(http.MethodDelete, path, asha, nil)
	s.Equal(http.StatusOK, code)
	code, _ = s.do(http.MethodGet, path, asha, nil)
	s.Equal(http.StatusNotFound, code)
}

func (s *APISuite) TestContactExchange() {
	asha, _ := s.signUp("asha", "asha@example.com")
	ravi, _ := s.signUp("ravi", "ravi@example.com")
	listing := s.postListing(asha, model.ListingRequest{Title: "Bicycle", Description: "Barely used"})
	path := "/listings/" + listing.ID.String() + "/messages"

	code, env := s.do(http.MethodPost, path, asha, model.ProposeContactRequest{Body: "my own"})
	s.Equal(http.StatusForbidden, code)
	s.Equal("You cannot send a message to yourself.", env.Message)

	phone := "9876543210"
	code, env = s.do(http.MethodPost, path, ravi, model.ProposeContactRequest{Body: "Is it available?", SenderPhone: &phone})
	s.Require().Equal(http.StatusCreated, code, env.Message)
	var message model.Message
	s.Require().NoError(json.Unmarshal(env.Data, &message))
	s.False(message.IsApproved)

	approve := "/messages/" + message.ID.String() + "/approve"
	code, _ = s.do(http.MethodPost, approve, ravi, nil)
	s.Equal(http.StatusForbidden, code)

	ownPhone := "9123456780"
	code, env = s.do(http.MethodPost, approve, asha, model.ApproveContactRequest{RecipientPhone: &ownPhone})
	s.Require().Equal(http.StatusOK, code, env.Message)
	s.Require().NoError(json.Unmarshal(env.Data, &message))
	s.True(message.IsApproved)
	s.Require().NotNil(message.RecipientPhoneOnApproval)
	s.Equal(ownPhone, *message.RecipientPhoneOnApproval)

	code, _ = s.do(http.MethodPost, approve, asha, nil)
	s.Equal(http.StatusConflict, code)

	code, env = s.do(http.MethodGet, "/dashboard", ravi, nil)
	s.Require().Equal(http.StatusOK, code)
	var dashboard model.DashboardResponse
	s.Require().NoError(json.Unmarshal(env.Data, &dashboard))
	s.Empty(dashboard.Listings)
	s.Empty(dashboard.Incoming)
	s.Require().Len(dashboard.Outgoing, 1)
	s.True(dashboard.Outgoing[0].IsApproved)
}

func (s *APISuite) TestProfile() {
	asha, user := s.signUp("asha", "asha@example.com")
	s.signUp("ravi", "ravi@example.com")

	code, env := s.do(http.MethodGet, "/users/profile", asha, nil)
	s.Require().Equal(http.StatusOK, code)
	var profile model.ProfileResponse
	s.Require().NoError(json.Unmarshal(env.Data, &profile))
	s.Equal(user.ID, profile.User.ID)
	s.Nil(profile.Profile.PhoneNumber)

	phone := "9876543210"
	code, env = s.do(http.MethodPut, "/users/profile", asha, model.UpdateProfileRequest{Username: "asha_k", Email: "asha@example.com", PhoneNumber: &phone})
	s.Require().Equal(http.StatusOK, code, env.Message)
	s.Require().NoError(json.Unmarshal(env.Data, &profile))
	s.Equal("asha_k", profile.User.Username)
	s.Require().NotNil(profile.Profile.PhoneNumber)
	s.Equal(phone, *profile.Profile.PhoneNumber)

	code, _ = s.do(http.MethodPut, "/users/profile", asha, model.UpdateProfileRequest{Username: "ravi", Email: "asha@example.com"})
	s.Equal(http.StatusConflict, code)
}

func (s *APISuite) TestVisitsAreCounted() {
	s.do(http.MethodGet, "/", "", nil)
	s.do(http.MethodGet, "/locations", "", nil)

	resp, err := http.Get(s.server.URL + "/metrics")
	s.Require().NoError(err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	s.Require().NoError(err)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Contains(string(body), "upzunction_visits_recorded_total 2")

	n, err := s.deps.Visits.Today(context.Background())
	s.Require().NoError(err)
	s.Equal(int64(2), n)
}

func (s *APISuite) TestWebsocketReceivesContactProposal() {
	asha, user := s.signUp("asha", "asha@example.com")
	ravi, _ := s.signUp("ravi", "ravi@example.com")
	listing := s.postListing(asha, model.ListingRequest{Title: "Bicycle", Description: "Barely used"})

	url := "ws" + strings.TrimPrefix(s.server.URL, "http") + "/ws?token=" + asha
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	s.Require().NoError(err)
	defer conn.Close()
	s.Require().Eventually(func() bool {
		return s.deps.Hub.Connected(user.ID) == 1
	}, time.Second, 10*time.Millisecond)

	code, _ := s.do(http.MethodPost, "/listings/"+listing.ID.String()+"/messages", ravi, model.ProposeContactRequest{Body: "Still there?"})
	s.Require().Equal(http.StatusCreated, code)

	s.Require().NoError(conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, frame, err := conn.ReadMessage()
	s.Require().NoError(err)
	var event realtime.Event
	s.Require().NoError(json.Unmarshal(frame, &event))
	s.Equal(board.EventContactProposed, event.Type)
}

func jsonNumber(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}
