package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/faceoff/internal/adapters/http/api"
	"github.com/okian/faceoff/internal/adapters/repository"
	service "github.com/okian/faceoff/internal/app"
	"github.com/okian/faceoff/internal/domain/model"
	"github.com/okian/faceoff/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

const testMaxRankingsLimit = 100

// newTestServer stands up the full handler stack over an in-memory store.
func newTestServer(items ...model.Item) (*http.ServeMux, *repository.MemStore) {
	store := repository.NewMemStore()
	ctx := context.Background()
	for _, it := range items {
		if err := store.AddItem(ctx, it); err != nil {
			panic(err)
		}
	}
	svc := service.New(store)
	mux := http.NewServeMux()
	api.NewServer(svc, svc, testMaxRankingsLimit).Register(ctx, mux)
	return mux, store
}

func doRequest(mux *http.ServeMux, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeBody(rec *httptest.ResponseRecorder, v any) error {
	return json.Unmarshal(rec.Body.Bytes(), v)
}

func eligibleItem(id string, rating float64) model.Item {
	return model.Item{ID: id, Title: "item " + id, ImageURL: "https://img.example/" + id, Rating: rating}
}

func TestGetComparison(t *testing.T) {
	Convey("Given a catalog with enough items", t, func() {
		mux, store := newTestServer(
			eligibleItem("a", 1500),
			eligibleItem("b", 1500),
			eligibleItem("c", 1500),
		)

		Convey("When GET /comparison is called", func() {
			rec := doRequest(mux, http.MethodGet, "/comparison", "")

			Convey("Then two distinct items return as JSON", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Header().Get("Content-Type"), ShouldStartWith, "application/json")

				var resp struct {
					Item1 model.Item `json:"item1"`
					Item2 model.Item `json:"item2"`
				}
				So(decodeBody(rec, &resp), ShouldBeNil)
				So(resp.Item1.ID, ShouldNotBeEmpty)
				So(resp.Item2.ID, ShouldNotBeEmpty)
				So(resp.Item1.ID, ShouldNotEqual, resp.Item2.ID)
			})

			Convey("And nothing was persisted by serving alone", func() {
				recent, err := store.RecentComparisons(context.Background(), 10)
				So(err, ShouldBeNil)
				So(recent, ShouldBeEmpty)
			})
		})

		Convey("When the wrong method is used", func() {
			rec := doRequest(mux, http.MethodPost, "/comparison", "")

			Convey("Then the route is not found", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})

	Convey("Given a catalog too small to pair", t, func() {
		mux, _ := newTestServer(eligibleItem("a", 1500))

		Convey("When GET /comparison is called", func() {
			rec := doRequest(mux, http.MethodGet, "/comparison", "")

			Convey("Then the shortage maps to 404 with its code", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
				var resp struct {
					Code string `json:"code"`
				}
				So(decodeBody(rec, &resp), ShouldBeNil)
				So(resp.Code, ShouldEqual, "insufficient_items")
			})
		})
	})
}

func TestPostVote(t *testing.T) {
	Convey("Given a served pair", t, func() {
		mux, store := newTestServer(
			eligibleItem("a", 1500),
			eligibleItem("b", 1500),
		)

		Convey("When a decided vote is posted", func() {
			rec := doRequest(mux, http.MethodPost, "/votes",
				`{"item1_id":"a","item2_id":"b","winner_id":"a"}`)

			Convey("Then updated ratings come back in submitted order", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var resp service.VoteResult
				So(decodeBody(rec, &resp), ShouldBeNil)
				So(resp.Item1.ID, ShouldEqual, "a")
				So(resp.Item2.ID, ShouldEqual, "b")
				So(resp.Item1.Rating, ShouldBeGreaterThan, 1500)
				So(resp.Item2.Rating, ShouldBeLessThan, 1500)
				So(resp.Skipped, ShouldBeFalse)
			})
		})

		Convey("When the vote carries no winner", func() {
			rec := doRequest(mux, http.MethodPost, "/votes",
				`{"item1_id":"a","item2_id":"b"}`)

			Convey("Then the pair is skipped and ratings hold", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var resp service.VoteResult
				So(decodeBody(rec, &resp), ShouldBeNil)
				So(resp.Skipped, ShouldBeTrue)
				So(resp.Item1.Rating, ShouldEqual, 1500)
				So(resp.Item2.Rating, ShouldEqual, 1500)
				So(resp.Item1.SkipCount, ShouldEqual, 1)
			})
		})

		Convey("When the winner is outside the pair", func() {
			rec := doRequest(mux, http.MethodPost, "/votes",
				`{"item1_id":"a","item2_id":"b","winner_id":"zz"}`)

			Convey("Then the vote maps to 400 invalid_winner", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				var resp struct {
					Code string `json:"code"`
				}
				So(decodeBody(rec, &resp), ShouldBeNil)
				So(resp.Code, ShouldEqual, "invalid_winner")
			})
		})

		Convey("When a pair item vanished since serving", func() {
			rec := doRequest(mux, http.MethodPost, "/votes",
				`{"item1_id":"a","item2_id":"ghost","winner_id":"a"}`)

			Convey("Then the vote maps to 409 stale_comparison", func() {
				So(rec.Code, ShouldEqual, http.StatusConflict)
				var resp struct {
					Code string `json:"code"`
				}
				So(decodeBody(rec, &resp), ShouldBeNil)
				So(resp.Code, ShouldEqual, "stale_comparison")
			})

			Convey("And the surviving item is untouched", func() {
				a, err := store.Item(context.Background(), "a")
				So(err, ShouldBeNil)
				So(a.Rating, ShouldEqual, 1500)
			})
		})

		Convey("When the payload is not valid JSON", func() {
			rec := doRequest(mux, http.MethodPost, "/votes", `{"item1_id":`)

			Convey("Then the request is rejected", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When a pair id is missing", func() {
			rec := doRequest(mux, http.MethodPost, "/votes", `{"item1_id":"a"}`)

			Convey("Then the request is rejected", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}

func TestGetRankings(t *testing.T) {
	Convey("Given a ranked catalog", t, func() {
		mux, _ := newTestServer(
			eligibleItem("mid", 1500),
			eligibleItem("top", 1700),
			eligibleItem("low", 1300),
		)

		Convey("When GET /rankings is called without a limit", func() {
			rec := doRequest(mux, http.MethodGet, "/rankings", "")

			Convey("Then the full board returns rating-descending", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var items []model.Item
				So(decodeBody(rec, &items), ShouldBeNil)
				So(items, ShouldHaveLength, 3)
				So(items[0].ID, ShouldEqual, "top")
				So(items[2].ID, ShouldEqual, "low")
			})
		})

		Convey("When a limit is supplied", func() {
			rec := doRequest(mux, http.MethodGet, "/rankings?limit=1", "")

			Convey("Then the board is truncated", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var items []model.Item
				So(decodeBody(rec, &items), ShouldBeNil)
				So(items, ShouldHaveLength, 1)
				So(items[0].ID, ShouldEqual, "top")
			})
		})

		Convey("When the limit is malformed or non-positive", func() {
			So(doRequest(mux, http.MethodGet, "/rankings?limit=abc", "").Code, ShouldEqual, http.StatusBadRequest)
			So(doRequest(mux, http.MethodGet, "/rankings?limit=0", "").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the limit exceeds the configured maximum", func() {
			rec := doRequest(mux, http.MethodGet, "/rankings?limit=5000", "")

			Convey("Then the request maps to 400 limit_exceeded", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				var resp struct {
					Code string `json:"code"`
				}
				So(decodeBody(rec, &resp), ShouldBeNil)
				So(resp.Code, ShouldEqual, "limit_exceeded")
			})
		})
	})
}

func TestPostItem(t *testing.T) {
	Convey("Given the items endpoint", t, func() {
		mux, store := newTestServer()

		Convey("When a valid item is posted", func() {
			rec := doRequest(mux, http.MethodPost, "/items",
				`{"title":"new thing","image_url":"https://img.example/new"}`)

			Convey("Then it is created with an id and the default rating", func() {
				So(rec.Code, ShouldEqual, http.StatusCreated)
				var it model.Item
				So(decodeBody(rec, &it), ShouldBeNil)
				So(it.ID, ShouldNotBeEmpty)
				So(it.Title, ShouldEqual, "new thing")
				So(it.Rating, ShouldEqual, model.DefaultRating)
				So(store.Count(context.Background()), ShouldEqual, 1)
			})
		})

		Convey("When the title is missing", func() {
			rec := doRequest(mux, http.MethodPost, "/items", `{"image_url":"https://img.example/x"}`)

			Convey("Then the request is rejected", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				So(store.Count(context.Background()), ShouldEqual, 0)
			})
		})
	})
}

func TestGetStats(t *testing.T) {
	Convey("Given a populated catalog", t, func() {
		mux, _ := newTestServer(
			eligibleItem("a", 1500),
			eligibleItem("b", 1500),
		)

		Convey("When GET /stats is called", func() {
			rec := doRequest(mux, http.MethodGet, "/stats", "")

			Convey("Then the catalog size is reported", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var stats map[string]any
				So(decodeBody(rec, &stats), ShouldBeNil)
				So(stats["totalItems"], ShouldEqual, float64(2))
			})
		})
	})
}

func TestHealthz(t *testing.T) {
	Convey("Given the health endpoint", t, func() {
		mux, _ := newTestServer()

		Convey("When GET /healthz is called", func() {
			rec := doRequest(mux, http.MethodGet, "/healthz", "")

			Convey("Then the metrics scrape succeeds", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
			})
		})
	})
}
