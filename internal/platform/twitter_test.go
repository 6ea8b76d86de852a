package platform

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/models"
)

func fastRetry() TwitterOption {
	return WithTwitterRetry(RetryConfig{
		MaxRetries: 2,
		BaseDelay:  time.Millisecond,
		MaxDelay:   time.Millisecond,
	})
}

func TestTwitterLookupProfile(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/users/by/username/sarah_tech", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("unexpected auth header: %q", got)
		}
		fmt.Fprint(w, `{"data":{"id":"123","name":"Sarah Chen","username":"sarah_tech",
			"description":"Building AI tools","location":"SF",
			"public_metrics":{"followers_count":2500}}}`)
	})
	mux.HandleFunc("/users/123/tweets", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[
			{"id":"t1","text":"Shipping weekly beats shipping quarterly",
				"created_at":"2025-06-10T12:00:00Z",
				"public_metrics":{"like_count":45,"reply_count":8}},
			{"id":"t2","text":"Manual outreach does not scale",
				"created_at":"2025-06-08T09:00:00Z",
				"public_metrics":{"like_count":12,"reply_count":1}}]}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewTwitterClient(server.URL, "test-token")
	prospect, err := client.LookupProfile(context.Background(), "@sarah_tech")
	if err != nil {
		t.Fatalf("LookupProfile failed: %v", err)
	}

	if prospect.PlatformID != "123" || prospect.Handle != "sarah_tech" {
		t.Fatalf("unexpected identity: %+v", prospect)
	}
	if prospect.FollowerCount != 2500 {
		t.Errorf("expected 2500 followers, got %d", prospect.FollowerCount)
	}
	if prospect.Bio != "Building AI tools" {
		t.Errorf("unexpected bio: %q", prospect.Bio)
	}
	if len(prospect.RecentPosts) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(prospect.RecentPosts))
	}
	if prospect.RecentPosts[0].Likes != 45 || prospect.RecentPosts[0].Comments != 8 {
		t.Errorf("unexpected post metrics: %+v", prospect.RecentPosts[0])
	}
	want := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	if !prospect.LastActivityAt.Equal(want) {
		t.Errorf("expected last activity %v, got %v", want, prospect.LastActivityAt)
	}
}

func TestTwitterLookupSurvivesTimelineFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/users/by/username/quiet_one", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"id":"77","username":"quiet_one","public_metrics":{"followers_count":800}}}`)
	})
	mux.HandleFunc("/users/77/tweets", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"title":"Forbidden"}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewTwitterClient(server.URL, "test-token")
	prospect, err := client.LookupProfile(context.Background(), "quiet_one")
	if err != nil {
		t.Fatalf("expected lookup to survive timeline failure, got %v", err)
	}
	if len(prospect.RecentPosts) != 0 {
		t.Fatalf("expected no posts, got %d", len(prospect.RecentPosts))
	}
}

func TestTwitterLookupNotFound(t *testing.T) {
	// The v2 API reports unknown usernames inside a 200 response.
	mux := http.NewServeMux()
	mux.HandleFunc("/users/by/username/ghost", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"errors":[{"title":"Not Found Error","detail":"Could not find user"}]}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewTwitterClient(server.URL, "test-token")
	_, err := client.LookupProfile(context.Background(), "ghost")
	if !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestTwitterRetriesRateLimit(t *testing.T) {
	attempts := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/users/by/username/busy", func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"data":{"id":"55","username":"busy","public_metrics":{"followers_count":100}}}`)
	})
	mux.HandleFunc("/users/55/tweets", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[]}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewTwitterClient(server.URL, "test-token", fastRetry())
	prospect, err := client.LookupProfile(context.Background(), "busy")
	if err != nil {
		t.Fatalf("expected retry to recover, got %v", err)
	}
	if prospect.PlatformID != "55" {
		t.Fatalf("unexpected prospect: %+v", prospect)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
}

func TestTwitterDoesNotRetryClientErrors(t *testing.T) {
	attempts := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/users/by/username/locked", func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"title":"Unauthorized"}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewTwitterClient(server.URL, "bad-token", fastRetry())
	if _, err := client.LookupProfile(context.Background(), "locked"); err == nil {
		t.Fatal("expected lookup to fail")
	}
	if attempts != 1 {
		t.Fatalf("expected a single attempt on 401, got %d", attempts)
	}
}

func TestTwitterFollowSendsTarget(t *testing.T) {
	var gotBody map[string]string
	mux := http.NewServeMux()
	mux.HandleFunc("/users/me", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"id":"me-1","username":"operator"}}`)
	})
	mux.HandleFunc("/users/me-1/following", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		fmt.Fprint(w, `{"data":{"following":true}}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewTwitterClient(server.URL, "test-token")
	prospect := &models.Prospect{PlatformID: "42", Handle: "sarah_tech", Platform: models.PlatformTwitter}
	if err := client.Follow(context.Background(), prospect); err != nil {
		t.Fatalf("Follow failed: %v", err)
	}

	if gotBody["target_user_id"] != "42" {
		t.Fatalf("unexpected follow body: %v", gotBody)
	}
}

func TestTwitterReplyBody(t *testing.T) {
	var gotBody struct {
		Text  string `json:"text"`
		Reply struct {
			InReplyTo string `json:"in_reply_to_tweet_id"`
		} `json:"reply"`
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/tweets", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"data":{"id":"new-1"}}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewTwitterClient(server.URL, "test-token")
	if err := client.Reply(context.Background(), "t9", "Good point"); err != nil {
		t.Fatalf("Reply failed: %v", err)
	}

	if gotBody.Text != "Good point" {
		t.Errorf("unexpected reply text: %q", gotBody.Text)
	}
	if gotBody.Reply.InReplyTo != "t9" {
		t.Errorf("unexpected reply target: %q", gotBody.Reply.InReplyTo)
	}
}

func TestTwitterDirectMessagePath(t *testing.T) {
	var gotPath string
	mux := http.NewServeMux()
	mux.HandleFunc("/dm_conversations/", func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprint(w, `{"data":{"dm_event_id":"dm-1"}}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewTwitterClient(server.URL, "test-token")
	prospect := &models.Prospect{PlatformID: "42", Handle: "sarah_tech", Platform: models.PlatformTwitter}
	if err := client.SendDirectMessage(context.Background(), prospect, "Hey Sarah"); err != nil {
		t.Fatalf("SendDirectMessage failed: %v", err)
	}

	if gotPath != "/dm_conversations/with/42/messages" {
		t.Fatalf("unexpected path: %q", gotPath)
	}
}

func TestTwitterSearchGroupsByAuthor(t *testing.T) {
	var gotQuery string
	mux := http.NewServeMux()
	mux.HandleFunc("/tweets/search/recent", func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		fmt.Fprint(w, `{
			"data":[
				{"id":"t1","text":"AI automation is eating my week","author_id":"u1",
					"created_at":"2025-06-10T10:00:00Z","public_metrics":{"like_count":20,"reply_count":2}},
				{"id":"t2","text":"More on automation","author_id":"u1",
					"created_at":"2025-06-11T10:00:00Z","public_metrics":{"like_count":5,"reply_count":0}},
				{"id":"t3","text":"Hiring for my saas","author_id":"u2",
					"created_at":"2025-06-09T10:00:00Z","public_metrics":{"like_count":9,"reply_count":1}}
			],
			"includes":{"users":[
				{"id":"u1","name":"Dev One","username":"dev_one","public_metrics":{"followers_count":1200}},
				{"id":"u2","name":"Dev Two","username":"dev_two","public_metrics":{"followers_count":3400}}
			]}}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewTwitterClient(server.URL, "test-token")
	prospects, err := client.SearchProspects(context.Background(), "automation", 5)
	if err != nil {
		t.Fatalf("SearchProspects failed: %v", err)
	}

	if gotQuery != "automation" {
		t.Errorf("unexpected query: %q", gotQuery)
	}
	if len(prospects) != 2 {
		t.Fatalf("expected 2 prospects, got %d", len(prospects))
	}
	if prospects[0].Handle != "dev_one" || len(prospects[0].RecentPosts) != 2 {
		t.Fatalf("unexpected first prospect: %+v", prospects[0])
	}
	want := time.Date(2025, 6, 11, 10, 0, 0, 0, time.UTC)
	if !prospects[0].LastActivityAt.Equal(want) {
		t.Errorf("expected newest tweet time, got %v", prospects[0].LastActivityAt)
	}
	if prospects[1].Handle != "dev_two" || len(prospects[1].RecentPosts) != 1 {
		t.Fatalf("unexpected second prospect: %+v", prospects[1])
	}
}

func TestTwitterMissingToken(t *testing.T) {
	client := NewTwitterClient("http://localhost:0", "")
	err := client.Like(context.Background(), "t1")
	if !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}
}

func TestTwitterConnectionRequestsNotSupported(t *testing.T) {
	client := NewTwitterClient("http://localhost:0", "t")
	err := client.SendConnectionRequest(context.Background(), &models.Prospect{Handle: "x"}, "")
	if !errors.Is(err, ErrNotSupported) {
		t.Fatalf("expected ErrNotSupported, got %v", err)
	}
}
