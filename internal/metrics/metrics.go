// Package metrics содержит Prometheus метрики API и доменных операций.
// Метрики регистрируются в реестре по умолчанию и отдаются на /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "foodgram_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "foodgram_api_active_requests",
			Help: "Number of API requests currently being served",
		},
	)

	// Рецепты
	RecipeOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_recipe_operations_total",
			Help: "Recipe create/update/delete operations by outcome",
		},
		[]string{"operation", "outcome"},
	)

	// Избранное и корзина
	LedgerOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_ledger_operations_total",
			Help: "Favorite and shopping cart operations by outcome",
		},
		[]string{"kind", "operation", "outcome"},
	)

	ShoppingListItems = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "foodgram_shopping_list_items",
			Help:    "Number of aggregated items per shopping list download",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
		},
	)

	SubscriptionOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_subscription_operations_total",
			Help: "Subscribe/unsubscribe operations by outcome",
		},
		[]string{"operation", "outcome"},
	)

	// Воркер
	ImageEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_image_events_total",
			Help: "Image release events by stage and outcome",
		},
		[]string{"stage", "outcome"},
	)
)

// Outcome переводит ошибку в метку исхода
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// RecordAPIRequest записывает метрики одного HTTP запроса
func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest увеличивает или уменьшает счетчик активных запросов
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

func RecordRecipeOperation(operation string, err error) {
	RecipeOperations.WithLabelValues(operation, Outcome(err)).Inc()
}

func RecordLedgerOperation(kind, operation string, err error) {
	LedgerOperations.WithLabelValues(kind, operation, Outcome(err)).Inc()
}

func RecordShoppingList(items int) {
	ShoppingListItems.Observe(float64(items))
}

func RecordSubscriptionOperation(operation string, err error) {
	SubscriptionOperations.WithLabelValues(operation, Outcome(err)).Inc()
}

// RecordImageEvent - stage: "publish" или "consume"
func RecordImageEvent(stage string, err error) {
	ImageEvents.WithLabelValues(stage, Outcome(err)).Inc()
}
