//go:build integration
// +build integration

package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ticketrelay/internal/controller/rest"
	"ticketrelay/internal/controller/rest/handlers"
	"ticketrelay/internal/domain/ticket"
	kafkaext "ticketrelay/internal/external/kafka"
	"ticketrelay/internal/messaging"
	ticket_repo "ticketrelay/internal/repo/ticket"
	"ticketrelay/internal/signature"
	"ticketrelay/internal/testinfra"
	"ticketrelay/pkg/health"

	"github.com/gin-gonic/gin"
	"github.com/google/go-querystring/query"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "integration-secret"
	adminUser  = "admin"
	adminPass  = "integration-pass"
)

type attachQuery struct {
	Shop      string `url:"shop"`
	Timestamp int64  `url:"ts"`
}

func setupStack(t *testing.T) (*httptest.Server, *testinfra.PostgresContainer, *testinfra.KafkaContainer, *signature.Verifier) {
	t.Helper()
	ctx := context.Background()

	pg, err := testinfra.NewPostgres(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { pg.Cleanup(ctx) })

	kc, err := testinfra.NewKafka(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { kc.Cleanup(ctx) })

	publisher := kafkaext.NewPublisher(kc.Brokers, kc.TicketsTopic)
	t.Cleanup(func() { _ = publisher.Close() })

	repo := ticket_repo.NewPgTicketRepo(pg.Pool)
	service := ticket.NewService(repo, kafkaext.NewEventSink(publisher))
	verifier := signature.NewVerifier(testSecret, true)

	router := rest.NewRouter("/tickets", adminUser, adminPass,
		handlers.NewTicketHandler(verifier, service),
		handlers.NewAdminHandler(service),
		health.NewRegistry(health.NewPostgresChecker(pg.Pool.Pool)),
	)

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	router.SetUp(engine)

	server := httptest.NewServer(engine)
	t.Cleanup(server.Close)

	return server, pg, kc, verifier
}

func postAttach(t *testing.T, serverURL string, verifier *signature.Verifier, q attachQuery, body map[string]string) *http.Response {
	t.Helper()

	values, err := query.Values(q)
	require.NoError(t, err)
	rawQuery := values.Encode()

	sig, err := verifier.Sign(rawQuery)
	require.NoError(t, err)

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	url := fmt.Sprintf("%s/tickets/attach-ticket?%s&signature=%s", serverURL, rawQuery, sig)
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	return resp
}

func getAdminTickets(t *testing.T, serverURL, statusFilter string) []ticket.Ticket {
	t.Helper()

	url := serverURL + "/admin/ui/tickets"
	if statusFilter != "" {
		url += "?status=" + statusFilter
	}
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	req.SetBasicAuth(adminUser, adminPass)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var tickets []ticket.Ticket
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&tickets))
	return tickets
}

func TestAttachFlow(t *testing.T) {
	server, pg, kc, verifier := setupStack(t)
	ctx := context.Background()

	q := attachQuery{Shop: "demo", Timestamp: time.Now().Unix()}

	t.Run("signed attach persists the ticket and emits an event", func(t *testing.T) {
		resp := postAttach(t, server.URL, verifier, q, map[string]string{
			"order_id":  "1001",
			"ticket_id": "T-9",
			"status":    "open",
		})
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)

		var result map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.Equal(t, true, result["ok"])
		assert.Equal(t, "1001", result["order_id"])
		assert.Equal(t, "T-9", result["ticket_id"])
		assert.Equal(t, "open", result["status"])

		// The attach event lands on the tickets topic.
		reader := kafkago.NewReader(kafkago.ReaderConfig{
			Brokers: kc.Brokers,
			Topic:   kc.TicketsTopic,
			GroupID: "integration-test",
		})
		defer reader.Close()

		readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		msg, err := reader.ReadMessage(readCtx)
		require.NoError(t, err)

		var env messaging.Envelope
		require.NoError(t, json.Unmarshal(msg.Value, &env))
		assert.Equal(t, "ticket.attached", env.Type)
		assert.Equal(t, "T-9", env.Key)
	})

	t.Run("repeated attach is idempotent", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			resp := postAttach(t, server.URL, verifier, q, map[string]string{
				"order_id":  "1001",
				"ticket_id": "T-9",
				"status":    "closed",
			})
			resp.Body.Close()
			require.Equal(t, http.StatusOK, resp.StatusCode)
		}

		var count int
		err := pg.Pool.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM tickets WHERE ticket_id = 'T-9'").Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		var status string
		err = pg.Pool.Pool.QueryRow(ctx, "SELECT status FROM tickets WHERE ticket_id = 'T-9'").Scan(&status)
		require.NoError(t, err)
		assert.Equal(t, "closed", status)
	})

	t.Run("admin filter is case-insensitive", func(t *testing.T) {
		for id, status := range map[string]string{"T-10": "open", "T-11": "OPEN", "T-12": "resolved"} {
			resp := postAttach(t, server.URL, verifier, q, map[string]string{
				"order_id":  "2001",
				"ticket_id": id,
				"status":    status,
			})
			resp.Body.Close()
			require.Equal(t, http.StatusOK, resp.StatusCode)
		}

		open := getAdminTickets(t, server.URL, "Open")
		require.Len(t, open, 2)
		for _, tk := range open {
			assert.NotEqual(t, "resolved", tk.Status)
		}

		all := getAdminTickets(t, server.URL, "all")
		assert.GreaterOrEqual(t, len(all), 4)
	})

	t.Run("tampered signature is rejected", func(t *testing.T) {
		values, err := query.Values(q)
		require.NoError(t, err)
		rawQuery := values.Encode()

		sig, err := verifier.Sign(rawQuery)
		require.NoError(t, err)

		url := fmt.Sprintf("%s/tickets/attach-ticket?%s&extra=1&signature=%s", server.URL, rawQuery, sig)
		resp, err := http.Post(url, "application/json", bytes.NewReader([]byte(`{"order_id":"1","ticket_id":"2","status":"3"}`)))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}
