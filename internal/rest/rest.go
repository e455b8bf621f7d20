package rest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"voyager.com/hearts/internal/game"
	"voyager.com/hearts/internal/util"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	ErrGameNotFound = errors.New("game not found")
	ErrUserExists   = errors.New("username already registered")
	ErrUnauthorized = errors.New("incorrect username or password")
)

// User is the authenticated account.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type token struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// RestClient talks to the api server's auth and game endpoints.
type RestClient struct {
	url        string
	timeoutSec uint32
	authToken  string
	client     *http.Client
}

func NewRestClient(url string, timeoutSec uint32, authToken string) *RestClient {
	return &RestClient{
		url:        url,
		timeoutSec: timeoutSec,
		authToken:  authToken,
		client:     &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
	}
}

func (rc *RestClient) SetAuthToken(authToken string) {
	rc.authToken = authToken
}

func (rc *RestClient) AuthToken() string {
	return rc.authToken
}

// Register creates an account. ErrUserExists is returned if the name is taken.
func (rc *RestClient) Register(ctx context.Context, username string, email string, password string) error {
	type reqData struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	body, err := json.Marshal(reqData{Username: username, Email: email, Password: password})
	if err != nil {
		return errors.Wrap(err, "Unable to encode register request")
	}
	status, _, err := rc.do(ctx, http.MethodPost, util.GetRegisterURL(rc.url), "application/json", bytes.NewBuffer(body))
	if err != nil {
		return errors.Wrap(err, "Register request failed")
	}
	switch status {
	case http.StatusCreated, http.StatusOK:
		return nil
	case http.StatusBadRequest:
		return ErrUserExists
	}
	return fmt.Errorf("Register returned %d", status)
}

// Login authenticates with the form login endpoint and keeps the access
// token for later calls.
func (rc *RestClient) Login(ctx context.Context, username string, password string) error {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)
	status, data, err := rc.do(ctx, http.MethodPost, util.GetLoginURL(rc.url),
		"application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		return errors.Wrap(err, "Login request failed")
	}
	if status == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if status != http.StatusOK {
		return fmt.Errorf("Login returned %d", status)
	}
	var t token
	if err := json.Unmarshal(data, &t); err != nil {
		return errors.Wrap(err, "Unable to read login response body")
	}
	if t.AccessToken == "" {
		return errors.New("Login response has no access token")
	}
	rc.authToken = t.AccessToken
	return nil
}

// Me returns the authenticated user.
func (rc *RestClient) Me(ctx context.Context) (*User, error) {
	status, data, err := rc.do(ctx, http.MethodGet, util.GetMeURL(rc.url), "", nil)
	if err != nil {
		return nil, errors.Wrap(err, "User request failed")
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("User request returned %d", status)
	}
	var user User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, errors.Wrap(err, "Unable to read user response body")
	}
	return &user, nil
}

// FindOrCreateGame joins a waiting game, creating one if none is open.
func (rc *RestClient) FindOrCreateGame(ctx context.Context) (*game.GameSummary, error) {
	status, data, err := rc.do(ctx, http.MethodPost, util.GetMatchURL(rc.url), "", nil)
	if err != nil {
		return nil, errors.Wrap(err, "Matchmaking request failed")
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("Matchmaking returned %d", status)
	}
	return decodeGame(data)
}

// GetGame fetches the game record. ErrGameNotFound is returned for a 404.
func (rc *RestClient) GetGame(ctx context.Context, gameID int) (*game.GameSummary, error) {
	status, data, err := rc.do(ctx, http.MethodGet, util.GetGameURL(rc.url, gameID), "", nil)
	if err != nil {
		return nil, errors.Wrapf(err, "Game request for %d failed", gameID)
	}
	if status == http.StatusNotFound {
		return nil, ErrGameNotFound
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("Game request for %d returned %d", gameID, status)
	}
	return decodeGame(data)
}

func decodeGame(data []byte) (*game.GameSummary, error) {
	var summary game.GameSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, errors.Wrap(err, "Unable to read game response body")
	}
	return &summary, nil
}

func (rc *RestClient) do(ctx context.Context, method string, url string, contentType string, body io.Reader) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return 0, nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if rc.authToken != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", rc.authToken))
	}
	resp, err := rc.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	data, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, errors.Wrap(err, "Unable to read response body")
	}
	return resp.StatusCode, data, nil
}
