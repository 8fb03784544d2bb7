package testutil

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/spares/backend/internal/domain/shared"
	"github.com/spares/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventually(t *testing.T) {
	var n atomic.Int32
	Eventually(t, time.Second, func() bool { return n.Add(1) >= 3 })
	assert.GreaterOrEqual(t, n.Load(), int32(3))

	rec := &recordingT{}
	Eventually(rec, 30*time.Millisecond, func() bool { return false })
	assert.True(t, rec.failed)
}

func TestNever(t *testing.T) {
	Never(t, 30*time.Millisecond, func() bool { return false })

	rec := &recordingT{}
	var n atomic.Int32
	Never(rec, time.Second, func() bool { return n.Add(1) == 2 })
	assert.True(t, rec.failed)
}

// recordingT captures failures instead of stopping the test
type recordingT struct {
	failed bool
}

func (r *recordingT) Errorf(string, ...any) { r.failed = true }
func (r *recordingT) FailNow()              { r.failed = true }

type item struct {
	Name string `json:"name"`
}

func TestAPIClient(t *testing.T) {
	engine := gin.New()
	engine.POST("/items", func(c *gin.Context) {
		var in item
		_ = c.ShouldBindJSON(&in)
		in.Name += ":" + c.GetHeader("X-User-ID")
		c.JSON(http.StatusCreated, dto.Ok(in))
	})
	engine.GET("/missing", func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.Failure(dto.ErrCodeNotFound, "nope", ""))
	})

	client := NewAPIClient(engine)
	client.Headers["X-User-ID"] = "u1"

	resp := client.Do(t, http.MethodPost, "/items", item{Name: "psu"}).RequireStatus(t, http.StatusCreated)
	assert.Equal(t, "psu:u1", Data[item](t, resp).Name)

	resp = client.Do(t, http.MethodPost, "/items", item{Name: "fan"}, "X-User-ID", "u2")
	assert.Equal(t, "fan:u2", Data[item](t, resp).Name)

	resp = client.Do(t, http.MethodGet, "/missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, dto.ErrCodeNotFound, resp.ErrorCode(t))
}

type testEvent struct {
	shared.EventHeader
}

func TestEventSink(t *testing.T) {
	sink := NewEventSink("stock.low", "stock.out")
	assert.Equal(t, []string{"stock.low", "stock.out"}, sink.EventTypes())

	low := &testEvent{EventHeader: shared.NewEventHeader("stock.low", "InventoryRecord", uuid.New())}
	out := &testEvent{EventHeader: shared.NewEventHeader("stock.out", "InventoryRecord", uuid.New())}
	go func() {
		_ = sink.Handle(context.Background(), low)
		_ = sink.Handle(context.Background(), out)
	}()

	got := sink.Await(t, "stock.out", 1, time.Second)
	require.NotNil(t, got)
	assert.Equal(t, out.EventID(), got.EventID())
	assert.Len(t, sink.Events("stock.low"), 1)
	assert.Len(t, sink.Events(""), 2)
}
