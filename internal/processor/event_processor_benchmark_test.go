package processor

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"lagospaces/server/internal/database"
	"lagospaces/server/internal/models"
	"lagospaces/server/internal/queue"
)

func generateBookingEvents(count int) []models.Event {
	events := make([]models.Event, count)
	now := time.Now().UTC()
	for i := range events {
		id := fmt.Sprintf("bench-%d", i)
		events[i] = models.Event{
			ID:     id,
			Type:   models.EventBookingCompleted,
			UserID: database.DemoUserID,
			Booking: &models.Booking{
				ID:            id,
				PropertyID:    "1",
				PropertyTitle: "Modern Apartment with Ocean View",
				TenantID:      database.DemoUserID,
				OwnerID:       "user1",
				VisitDate:     "2024-05-10",
				VisitTime:     "10:00",
				Fee:           5000,
				PaymentMethod: models.PaymentBank,
				Status:        models.BookingPendingVisit,
				CreatedAt:     now,
				UpdatedAt:     now,
			},
		}
	}
	return events
}

func BenchmarkEventProcessing(b *testing.B) {
	batchSizes := []int{1, 10, 50}
	eventCount := 500

	for _, batchSize := range batchSizes {
		b.Run(fmt.Sprintf("BatchSize_%d_Events_%d", batchSize, eventCount), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				b.StopTimer()
				gdb, err := database.NewTestDB()
				require.NoError(b, err)
				require.NoError(b, database.MigrateSchema(gdb))
				require.NoError(b, database.Seed(gdb))

				q := queue.NewEventQueue(eventCount/batchSize+1, quietLogger())
				processor := NewEventProcessor(gdb, q, Config{ProcessorCount: 4, MaxRetries: 3}, nil, nil, nil, quietLogger())
				events := generateBookingEvents(eventCount)
				processor.Start()
				b.StartTimer()

				startTime := time.Now()
				for start := 0; start < len(events); start += batchSize {
					end := start + batchSize
					if end > len(events) {
						end = len(events)
					}
					require.NoError(b, q.Push(events[start:end]))
				}
				processor.Stop()

				duration := time.Since(startTime)
				b.ReportMetric(float64(eventCount)/duration.Seconds(), "events/sec")

				b.StopTimer()
				var count int64
				require.NoError(b, gdb.Model(&models.Booking{}).Count(&count).Error)
				require.Equal(b, int64(eventCount), count)
				b.StartTimer()
			}
		})
	}
}
