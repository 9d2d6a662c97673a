package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelinsk/authgate/internal/logger"
	"github.com/avelinsk/authgate/internal/repository/postgres"
	"github.com/avelinsk/authgate/internal/service/auth"
	"github.com/avelinsk/authgate/internal/service/auth/tokensigner"
	"github.com/avelinsk/authgate/internal/service/post"
	"github.com/avelinsk/authgate/internal/testutil"
)

func Test_PostHandler(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	withServer := func(t *testing.T, fn func(url string)) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			storage := postgres.NewStorage(tx)

			signer, err := tokensigner.New(tokensigner.Config{SecretKey: "test-secret"})
			require.NoError(t, err)

			authService, err := auth.NewService(auth.Config{}, signer, storage)
			require.NoError(t, err)

			mux := NewRouter(authService, post.NewService(storage.Post()), signer, storage.User(), logger.NewNoOpLogger())
			srv := httptest.NewServer(mux)
			defer srv.Close()

			fn(srv.URL)
		})
	}

	do := func(t *testing.T, method string, url string, body string) (*http.Response, string) {
		t.Helper()
		var reader io.Reader
		if body != "" {
			reader = strings.NewReader(body)
		}
		req, err := http.NewRequest(method, url, reader)
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		return resp, string(raw)
	}

	type postBody struct {
		ID     string `json:"id"`
		Title  string `json:"title"`
		Text   string `json:"text"`
		Author string `json:"author"`
	}

	create := func(t *testing.T, url string, title string) postBody {
		t.Helper()
		resp, body := do(t, http.MethodPost, url+"/posts", fmt.Sprintf(`{"title": %q, "text": "some text", "author": "alice"}`, title))
		require.Equalf(t, http.StatusOK, resp.StatusCode, "post creation failed. Body: %s", body)

		var created postBody
		require.NoError(t, json.Unmarshal([]byte(body), &created))
		return created
	}

	t.Run("crud round trip", func(t *testing.T) {
		withServer(t, func(url string) {
			created := create(t, url, "First post")
			require.NotEmpty(t, created.ID)

			resp, body := do(t, http.MethodGet, url+"/posts/"+created.ID, "")
			require.Equal(t, http.StatusOK, resp.StatusCode)
			var got postBody
			require.NoError(t, json.Unmarshal([]byte(body), &got))
			assert.Equal(t, created, got)

			resp, body = do(t, http.MethodPut, url+"/posts/"+created.ID, `{"title": "Edited", "text": "new text", "author": "bob"}`)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			require.NoError(t, json.Unmarshal([]byte(body), &got))
			assert.Equal(t, "Edited", got.Title)

			resp, _ = do(t, http.MethodDelete, url+"/posts/"+created.ID, "")
			require.Equal(t, http.StatusOK, resp.StatusCode)

			resp, _ = do(t, http.MethodGet, url+"/posts/"+created.ID, "")
			require.Equal(t, http.StatusNotFound, resp.StatusCode)
		})
	})

	t.Run("list posts", func(t *testing.T) {
		withServer(t, func(url string) {
			create(t, url, "First post")
			create(t, url, "Second post")

			resp, body := do(t, http.MethodGet, url+"/posts", "")
			require.Equal(t, http.StatusOK, resp.StatusCode)

			var posts []postBody
			require.NoError(t, json.Unmarshal([]byte(body), &posts))
			require.Len(t, posts, 2)

			titles := []string{posts[0].Title, posts[1].Title}
			assert.ElementsMatch(t, []string{"First post", "Second post"}, titles)
		})
	})

	t.Run("invalid id", func(t *testing.T) {
		withServer(t, func(url string) {
			resp, _ := do(t, http.MethodGet, url+"/posts/not-a-uuid", "")
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	})

	t.Run("validation", func(t *testing.T) {
		withServer(t, func(url string) {
			resp, body := do(t, http.MethodPost, url+"/posts", `{"title": "", "text": "", "author": ""}`)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
			require.Contains(t, body, "validation_failed")
		})
	})
}
