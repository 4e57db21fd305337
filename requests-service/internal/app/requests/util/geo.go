package util

import (
	"math"
	"sort"

	"expertaid/requests-service/internal/app/requests/entity"
)

const earthRadiusKm = 6371.0

// HaversineDistanceKm вычисляет расстояние по дуге большого круга между
// двумя точками (в километрах). Координаты в градусах
func HaversineDistanceKm(lon1, lat1, lon2, lat2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// IsValidCoordinates проверяет, что точка лежит в допустимых пределах
func IsValidCoordinates(lon, lat float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// NearbyRequest - заявка с вычисленным расстоянием до точки запроса
type NearbyRequest struct {
	Request    entity.ServiceRequest
	DistanceKm float64
}

// FilterNearby оставляет заявки в радиусе radiusKm от точки (lon, lat)
// и сортирует их по возрастанию расстояния. Заявки без координат
// отбрасываются: гео-выборка по ним не определена. При равном расстоянии
// первой идет более старая заявка
func FilterNearby(requests []entity.ServiceRequest, lon, lat, radiusKm float64) []NearbyRequest {
	nearby := make([]NearbyRequest, 0, len(requests))

	for _, req := range requests {
		if !req.HasLocation() {
			continue
		}

		distance := HaversineDistanceKm(lon, lat, *req.Longitude, *req.Latitude)
		if distance > radiusKm {
			continue
		}

		nearby = append(nearby, NearbyRequest{
			Request:    req,
			DistanceKm: distance,
		})
	}

	sort.SliceStable(nearby, func(i, j int) bool {
		if nearby[i].DistanceKm != nearby[j].DistanceKm {
			return nearby[i].DistanceKm < nearby[j].DistanceKm
		}
		return nearby[i].Request.CreatedAt.Before(nearby[j].Request.CreatedAt)
	})

	return nearby
}
