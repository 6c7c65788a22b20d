package attendance

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts attendance actions. A nil *Metrics records nothing.
type Metrics struct {
	Actions  *prometheus.CounterVec
	Geofence *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Actions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hrm_attendance_actions_total",
			Help: "Attendance actions by action and result code",
		}, []string{"action", "result"}),
		Geofence: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hrm_attendance_geofence_rejections_total",
			Help: "Attendance actions of any kind rejected by the location gate",
		}, []string{"reason"}),
	}
}

// action: result は成功なら "ok"、失敗なら APIError のコード
func (m *Metrics) action(kind ActionKind, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = string(CodeInternal)
		var api *APIError
		if errors.As(err, &api) {
			result = string(api.Code)
		}
	}
	m.Actions.WithLabelValues(string(kind), result).Inc()
}

func (m *Metrics) geofence(code Code) {
	if m == nil {
		return
	}
	m.Geofence.WithLabelValues(string(code)).Inc()
}
