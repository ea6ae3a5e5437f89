package memengine

import (
	"time"

	"github.com/specialistvlad/geoview/internal/mapengine"
	"github.com/specialistvlad/geoview/internal/model"
)

// ForecastTimeInfo gives every image service layer a forecast-style time
// dimension: from now for horizon, one stop per step. Other kinds have none.
func ForecastTimeInfo(now time.Time, horizon, step time.Duration) TimeInfoFunc {
	return func(props mapengine.LayerProperties) (mapengine.TimeInfo, bool) {
		if props.Kind != model.LayerImageService {
			return mapengine.TimeInfo{}, false
		}
		return mapengine.TimeInfo{
			FullTimeExtent: mapengine.TimeExtent{Start: now, End: now.Add(horizon)},
			Interval:       step,
		}, true
	}
}
