package timekit_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beekhof/timekit"
	"github.com/beekhof/timekit/internal/timekittest"
)

func newTestClient(t *testing.T) (*timekit.Client, *timekittest.Server) {
	t.Helper()

	server := timekittest.NewServer()
	t.Cleanup(server.Close)

	client := timekit.New(
		timekit.WithApp("demo"),
		timekit.WithAPIBaseURL(server.BaseURL()),
	)
	return client, server
}

func newAuthedClient(t *testing.T) (*timekit.Client, *timekittest.Server) {
	t.Helper()

	client, server := newTestClient(t)
	client.SetUser(timekittest.UserEmail, timekittest.UserAPIToken)
	return client, server
}

func TestAuth(t *testing.T) {
	client, server := newTestClient(t)

	resp, err := client.Auth(context.Background(), timekittest.UserEmail, timekittest.UserPassword)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, timekittest.UserEmail, resp.Data.Email)
	assert.Equal(t, timekittest.UserAPIToken, resp.Data.APIToken)
	assert.Equal(t, "/v2/auth", server.LastRequest().Path)

	// The returned token becomes the client's credentials.
	assert.Equal(t, timekit.Credentials{Email: timekittest.UserEmail, APIToken: timekittest.UserAPIToken}, client.User())

	me, err := client.GetUserInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, timekittest.UserEmail, me.Data.Email)
}

func TestAuth_WrongCredentials(t *testing.T) {
	client, _ := newTestClient(t)

	resp, err := client.Auth(context.Background(), "invaliduser@gmail.com", timekittest.UserPassword)
	require.Error(t, err)
	assert.Nil(t, resp)

	var apiErr *timekit.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Code)
	assert.Equal(t, timekit.KindAuthentication, apiErr.Kind)
	assert.NotEmpty(t, apiErr.Message)
	assert.ErrorIs(t, err, timekit.ErrAuthentication)
	assert.True(t, client.User().IsZero())
}

func TestAccountGoogleSignup(t *testing.T) {
	client, server := newTestClient(t)
	before := len(server.Requests())

	signupURL := client.AccountGoogleSignup("https://example.com/done")

	assert.Regexp(t, `^https?://[\w.\-:]+(/[\w.\-/]*)?(\?[^#]*)?$`, signupURL)
	assert.Equal(t, server.BaseURL()+"v2/accounts/google/signup?Timekit-App=demo&callback=https%3A%2F%2Fexample.com%2Fdone", signupURL)
	assert.Len(t, server.Requests(), before, "signup URL must not hit the network")
}

func TestAuthenticatedEndpoints_RequireCredentials(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()
	now := time.Now()

	calls := map[string]func() error{
		"findTime": func() error {
			_, err := client.FindTime(ctx, timekit.FindTimeRequest{Emails: []string{timekittest.UserEmail}})
			return err
		},
		"getAccounts":       func() error { _, err := client.GetAccounts(ctx); return err },
		"getCalendars":      func() error { _, err := client.GetCalendars(ctx); return err },
		"getCalendar":       func() error { _, err := client.GetCalendar(ctx, timekittest.CalendarID); return err },
		"getContacts":       func() error { _, err := client.GetContacts(ctx); return err },
		"getEvents":         func() error { _, err := client.GetEvents(ctx, now, now.Add(time.Hour)); return err },
		"getMeetings":       func() error { _, err := client.GetMeetings(ctx); return err },
		"getMeeting":        func() error { _, err := client.GetMeeting(ctx, timekittest.MeetingToken); return err },
		"getUserInfo":       func() error { _, err := client.GetUserInfo(ctx); return err },
		"getUserProperties": func() error { _, err := client.GetUserProperties(ctx); return err },
		"setUserProperties": func() error {
			_, err := client.SetUserProperties(ctx, map[string]string{"a": "b"})
			return err
		},
	}

	for name, fn := range calls {
		t.Run(name, func(t *testing.T) {
			err := fn()
			require.Error(t, err)
			assert.ErrorIs(t, err, timekit.ErrAuthentication)
			assert.Equal(t, http.StatusUnauthorized, timekit.StatusCode(err))
		})
	}
}

func TestFindTime(t *testing.T) {
	client, server := newAuthedClient(t)

	req := timekit.FindTimeRequest{
		Emails: []string{"timebirdcph@gmail.com", "timebirdnyc@gmail.com"},
		Filters: timekit.FindTimeFilters{
			Or: []timekit.Filter{
				timekit.SpecificDay("Monday"),
				timekit.SpecificDayAndTime("Wednesday", 10, 12, "Europe/Copenhagen"),
			},
			And: []timekit.Filter{
				timekit.BusinessHours("America/Los_angeles"),
			},
		},
		Future: "3 days",
		Length: "30 minutes",
		Sort:   "asc",
	}

	resp, err := client.FindTime(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	require.NotEmpty(t, resp.Data)
	assert.True(t, resp.Data[0].Start.Before(resp.Data[0].End))

	sent := server.LastRequest()
	assert.Equal(t, http.MethodPost, sent.Method)
	assert.Equal(t, "application/json", sent.Header.Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(sent.Body, &body))
	assert.Equal(t, "3 days", body["future"])
	assert.Equal(t, "30 minutes", body["length"])
	assert.Equal(t, "asc", body["sort"])
	filters := body["filters"].(map[string]any)
	assert.Len(t, filters["or"], 2)
	assert.Len(t, filters["and"], 1)
}

func TestGetAccounts(t *testing.T) {
	client, _ := newAuthedClient(t)

	resp, err := client.GetAccounts(context.Background())
	require.NoError(t, err)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, timekit.ID("1"), resp.Data[0].ID)
	assert.Equal(t, "google", resp.Data[0].Provider)
}

func TestGetAccountGoogleCalendars(t *testing.T) {
	client, _ := newAuthedClient(t)

	resp, err := client.GetAccountGoogleCalendars(context.Background())
	require.NoError(t, err)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, timekittest.UserEmail, resp.Data[0].Id)
	assert.True(t, resp.Data[0].Primary)
	assert.Equal(t, "Holidays", resp.Data[1].Summary)
}

func TestAccountSync(t *testing.T) {
	client, _ := newAuthedClient(t)

	resp, err := client.AccountSync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Data.Count)
}

func TestGetCalendars(t *testing.T) {
	client, server := newAuthedClient(t)
	ctx := context.Background()

	resp, err := client.GetCalendars(ctx)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	require.NotEmpty(t, resp.Data)

	for _, cal := range resp.Data {
		detail, err := client.GetCalendar(ctx, string(cal.ID))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, detail.Status)
		assert.NotEmpty(t, detail.Data.Name)
		assert.Equal(t, cal.Name, detail.Data.Name)
	}

	assert.Equal(t, "/v2/calendar/"+string(resp.Data[len(resp.Data)-1].ID), server.LastRequest().Path)
}

func TestGetCalendar_NotFound(t *testing.T) {
	client, _ := newAuthedClient(t)

	_, err := client.GetCalendar(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, timekit.ErrValidation)
	assert.Equal(t, http.StatusNotFound, timekit.StatusCode(err))
}

func TestGetContacts(t *testing.T) {
	client, _ := newAuthedClient(t)

	resp, err := client.GetContacts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "timebirdnyc@gmail.com", resp.Data[0].Email)
}

func TestGetEvents(t *testing.T) {
	client, server := newAuthedClient(t)

	start := time.Now()
	end := start.Add(3 * 7 * 24 * time.Hour)

	resp, err := client.GetEvents(context.Background(), start, end)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "Standup", resp.Data[0].What)
	assert.Equal(t, timekit.ID(timekittest.CalendarID), resp.Data[0].CalendarID)

	query := server.LastRequest().Query
	assert.Contains(t, query, "start=")
	assert.Contains(t, query, "end=")
}

func TestGetAvailability(t *testing.T) {
	client, server := newAuthedClient(t)

	start := time.Now()
	end := start.Add(3 * 7 * 24 * time.Hour)

	resp, err := client.GetAvailability(context.Background(), start, end, "timebirdnyc@gmail.com")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Len(t, resp.Data, 2)
	assert.Contains(t, server.LastRequest().Query, "email=timebirdnyc%40gmail.com")
}

func TestMeetings(t *testing.T) {
	client, _ := newAuthedClient(t)
	ctx := context.Background()

	list, err := client.GetMeetings(ctx)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, list.Status)
	require.NotEmpty(t, list.Data)

	meeting, err := client.GetMeeting(ctx, timekittest.MeetingToken)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, meeting.Status)
	assert.Equal(t, "Lunch", meeting.Data.What)
}

func TestCreateMeeting(t *testing.T) {
	client, _ := newAuthedClient(t)
	ctx := context.Background()

	suggestions := []timekit.Suggestion{
		{
			Start: time.Date(2015, 9, 22, 14, 30, 0, 0, time.UTC),
			End:   time.Date(2015, 9, 22, 16, 0, 0, 0, time.UTC),
		},
		{
			Start: time.Date(2015, 9, 23, 9, 15, 0, 0, time.UTC),
			End:   time.Date(2015, 9, 23, 9, 45, 0, 0, time.UTC),
		},
	}

	resp, err := client.CreateMeeting(ctx, "test title", "test location", suggestions)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.Status)
	assert.Equal(t, "test title", resp.Data.What)
	assert.Equal(t, "test location", resp.Data.Where)
	require.Len(t, resp.Data.Suggestions, 2)
	assert.NotEmpty(t, resp.Data.Suggestions[0].ID)
	assert.True(t, resp.Data.Suggestions[0].Start.Equal(suggestions[0].Start))

	fetched, err := client.GetMeeting(ctx, resp.Data.Token)
	require.NoError(t, err)
	assert.Equal(t, "test title", fetched.Data.What)
}

func TestUpdateMeeting(t *testing.T) {
	client, _ := newAuthedClient(t)
	ctx := context.Background()

	resp, err := client.UpdateMeeting(ctx, timekittest.MeetingToken, timekit.MeetingUpdate{
		What:  "new test title",
		Where: "new test location",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.Status)
	assert.Equal(t, timekit.NoContent{}, resp.Data)

	meeting, err := client.GetMeeting(ctx, timekittest.MeetingToken)
	require.NoError(t, err)
	assert.Equal(t, "new test title", meeting.Data.What)
	assert.Equal(t, "new test location", meeting.Data.Where)
}

func TestSetMeetingAvailability(t *testing.T) {
	client, server := newAuthedClient(t)

	resp, err := client.SetMeetingAvailability(context.Background(), "1", true)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.Status)

	available, answered := server.SuggestionAvailable(1, timekittest.UserEmail)
	assert.True(t, answered)
	assert.True(t, available)
}

func TestBookMeeting(t *testing.T) {
	client, server := newAuthedClient(t)
	ctx := context.Background()

	created, err := client.CreateMeeting(ctx, "test title", "test location", []timekit.Suggestion{
		{Start: time.Now().Add(time.Hour), End: time.Now().Add(2 * time.Hour)},
	})
	require.NoError(t, err)

	suggestionID := string(created.Data.Suggestions[0].ID)
	resp, err := client.BookMeeting(ctx, suggestionID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.Status)

	id, err := strconv.Atoi(suggestionID)
	require.NoError(t, err)
	assert.True(t, server.SuggestionBooked(id))
}

func TestInviteToMeeting(t *testing.T) {
	client, server := newAuthedClient(t)
	emails := []string{"some_test_user@timekit.io", "some_other_test_user@timekit.io"}

	resp, err := client.InviteToMeeting(context.Background(), timekittest.MeetingToken, emails)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.Status)
	assert.Equal(t, emails, server.Invited(timekittest.MeetingToken))
}

func TestCreateUser(t *testing.T) {
	client, server := newTestClient(t)
	ctx := context.Background()

	resp, err := client.CreateUser(ctx, timekit.NewUser{
		FirstName: "John",
		LastName:  "Doe",
		Email:     "john.doe@example.com",
		Password:  "password",
		Timezone:  "Europe/Copenhagen",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.Status)
	assert.Equal(t, "john.doe@example.com", resp.Data.Email)
	assert.Empty(t, server.LastRequest().Header.Get("Authorization"))
	assert.True(t, client.User().IsZero())

	_, err = client.CreateUser(ctx, timekit.NewUser{Email: "john.doe@example.com", Password: "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, timekit.ErrValidation)
	assert.Equal(t, http.StatusUnprocessableEntity, timekit.StatusCode(err))
}

func TestUpdateUser(t *testing.T) {
	client, server := newAuthedClient(t)
	ctx := context.Background()

	resp, err := client.UpdateUser(ctx, timekit.UserUpdate{FirstName: "Jane", Timezone: "Europe/Berlin"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.Status)
	assert.JSONEq(t, `{"first_name":"Jane","timezone":"Europe/Berlin"}`, string(server.LastRequest().Body))

	me, err := client.GetUserInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Jane", me.Data.FirstName)
	assert.Equal(t, "Europe/Berlin", me.Data.Timezone)
	assert.Empty(t, me.Data.APIToken)
}

func TestUserProperties(t *testing.T) {
	client, _ := newAuthedClient(t)
	ctx := context.Background()

	list, err := client.GetUserProperties(ctx)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, list.Status)
	require.Len(t, list.Data, 1)

	property, err := client.GetUserProperty(ctx, timekittest.PropertyKey)
	require.NoError(t, err)
	assert.Equal(t, timekittest.PropertyKey, property.Data.Key)
	assert.NotEmpty(t, property.Data.Value)

	set, err := client.SetUserProperties(ctx, map[string]string{
		"testKey1": "testValue1",
		"testKey2": "testValue2",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, set.Status)

	stored, err := client.GetUserProperty(ctx, "testKey2")
	require.NoError(t, err)
	assert.Equal(t, "testValue2", stored.Data.Value)

	list, err = client.GetUserProperties(ctx)
	require.NoError(t, err)
	assert.Len(t, list.Data, 3)
}

func TestSetUser_AppliesToNextCall(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	_, err := client.GetCalendars(ctx)
	require.ErrorIs(t, err, timekit.ErrAuthentication)

	client.SetUser(timekittest.UserEmail, timekittest.UserAPIToken)
	_, err = client.GetCalendars(ctx)
	require.NoError(t, err)

	client.SetUser(timekittest.UserEmail, "stale-token")
	_, err = client.GetCalendars(ctx)
	require.ErrorIs(t, err, timekit.ErrAuthentication)
}

func TestConfigChange_DoesNotAffectInFlightCall(t *testing.T) {
	client, server := newAuthedClient(t)

	entered, release := server.HoldNext()
	t.Cleanup(release)

	done := make(chan error, 1)
	go func() {
		_, err := client.GetCalendars(context.Background())
		done <- err
	}()

	select {
	case <-entered:
	case <-time.After(5 * time.Second):
		t.Fatal("request never reached the server")
	}

	client.SetUser("other@example.com", "other-token")
	client.Configure(timekit.Settings{App: "second"})
	release()

	// The held call finishes with the credentials it started with.
	require.NoError(t, <-done)

	inFlight := server.Requests()[0]
	assert.Equal(t, "demo", inFlight.Header.Get("Timekit-App"))
	email, token, ok := (&http.Request{Header: inFlight.Header}).BasicAuth()
	require.True(t, ok)
	assert.Equal(t, timekittest.UserEmail, email)
	assert.Equal(t, timekittest.UserAPIToken, token)

	_, err := client.GetCalendars(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, timekit.ErrAuthentication)

	next := server.LastRequest()
	assert.Equal(t, "second", next.Header.Get("Timekit-App"))
	email, _, ok = (&http.Request{Header: next.Header}).BasicAuth()
	require.True(t, ok)
	assert.Equal(t, "other@example.com", email)
}

func TestConcurrentCalls(t *testing.T) {
	client, server := newAuthedClient(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := client.GetCalendar(ctx, timekittest.CalendarID); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent call failed: %v", err)
	}
	assert.Len(t, server.Requests(), 20)
}

func TestTransportError(t *testing.T) {
	server := timekittest.NewServer()
	baseURL := server.BaseURL()
	server.Close()

	client := timekit.New(timekit.WithAPIBaseURL(baseURL), timekit.WithUser("a", "b"))

	_, err := client.GetCalendars(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, timekit.ErrTransport)

	var transportErr *timekit.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, http.MethodGet, transportErr.Method)
}

func TestContextCancellation(t *testing.T) {
	client, _ := newAuthedClient(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.GetCalendars(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.ErrorIs(t, err, timekit.ErrTransport)
}
