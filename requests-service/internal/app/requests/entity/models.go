package entity

import (
	"time"

	"github.com/google/uuid"
)

// ServiceRequest представляет заявку на услугу
type ServiceRequest struct {
	ID     uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	UserID uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index"` // ID пользователя из Auth Service
	// ExpertID назначается ровно один раз; null пока заявка никем не принята
	ExpertID *uuid.UUID `json:"expert_id,omitempty" gorm:"type:uuid;index"`

	ServiceName string `json:"service_name" gorm:"type:varchar(255);not null"`
	Description string `json:"service_des" gorm:"type:text;not null"`
	Date        string `json:"date" gorm:"type:varchar(50);not null"` // Желаемая дата в формате клиента
	Time        string `json:"time" gorm:"type:varchar(50);not null"`

	// Координаты опциональны: заявка без локации не попадает в гео-выборки,
	// но остается видимой в общем пуле
	Longitude *float64 `json:"longitude,omitempty" gorm:"type:decimal(11,8)"`
	Latitude  *float64 `json:"latitude,omitempty" gorm:"type:decimal(10,8)"`

	FemalePreference bool          `json:"female_preference" gorm:"not null;default:false"` // Мягкий фильтр, не влияет на назначение
	Status           RequestStatus `json:"status" gorm:"type:varchar(50);not null;default:'pending';index"`

	// Поля завершения, заполняются только при переходе в done
	PaymentAmount *float64   `json:"payment_amount,omitempty" gorm:"type:decimal(10,2)"`
	PaymentType   string     `json:"payment_type,omitempty" gorm:"type:varchar(50)"`
	Remarks       string     `json:"remarks,omitempty" gorm:"type:text"`
	SolvedDate    *time.Time `json:"solved_date,omitempty"`

	// Отзыв пользователя, доступен только после done; перезаписываемый
	Rating   *int   `json:"rating,omitempty" gorm:"check:rating >= 1 AND rating <= 5"`
	Feedback string `json:"feedback,omitempty" gorm:"type:text"`

	// Денормализованные контактные данные заказчика для отображения
	UserName string `json:"user_name" gorm:"type:varchar(255)"`
	MobileNo string `json:"mobile_no" gorm:"type:varchar(50)"`
	Email    string `json:"email" gorm:"type:varchar(255)"`
	Address  string `json:"address" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName указывает имя таблицы для GORM
func (ServiceRequest) TableName() string {
	return "service_requests"
}

// HasLocation сообщает, задана ли у заявки географическая точка
func (r *ServiceRequest) HasLocation() bool {
	return r.Longitude != nil && r.Latitude != nil
}

// IsAccepted сообщает, принята ли заявка экспертом, но еще не завершена.
// Отдельного статуса accepted нет: назначение выражается через expert_id
func (r *ServiceRequest) IsAccepted() bool {
	return r.Status == RequestStatusPending && r.ExpertID != nil
}

// RequestStatus представляет статусы заявки
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"  // Ожидает эксперта или в работе
	RequestStatusDone     RequestStatus = "done"     // Завершена (финальный)
	RequestStatusRejected RequestStatus = "rejected" // Отклонена (финальный)
)

// HistoryEntry представляет запись в истории пользователя.
// Хранится в MongoDB, создается ровно один раз при создании заявки.
// Поля status и expert_id - кеш на момент записи, не источник истины
type HistoryEntry struct {
	ServiceID   uuid.UUID `json:"service_id" bson:"service_id"`
	UserID      uuid.UUID `json:"user_id" bson:"user_id"`
	ExpertID    string    `json:"expert_id" bson:"expert_id"` // Пустая строка пока не назначен
	Date        string    `json:"date" bson:"date"`
	ServiceName string    `json:"service_name" bson:"service_name"`
	Status      string    `json:"status" bson:"status"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

// ExpertReputation - производная величина: среднее оценок по завершенным
// и оцененным заявкам эксперта. Nil Rating означает "оценок еще нет"
type ExpertReputation struct {
	ExpertID    uuid.UUID `json:"expert_id"`
	Rating      *float64  `json:"rating,omitempty"`
	RatingCount int       `json:"rating_count"`
	ComputedAt  time.Time `json:"computed_at"`
}

// Типы событий заявки для Kafka
const (
	EventRequestCreated   = "REQUEST_CREATED"
	EventRequestAccepted  = "REQUEST_ACCEPTED"
	EventRequestCompleted = "REQUEST_COMPLETED"
	EventRequestRejected  = "REQUEST_REJECTED"
	EventRequestFeedback  = "REQUEST_FEEDBACK"
)

// RequestEvent представляет событие изменения заявки для Kafka
type RequestEvent struct {
	EventType string        `json:"event_type"`
	RequestID uuid.UUID     `json:"request_id"`
	UserID    uuid.UUID     `json:"user_id"`
	ExpertID  *uuid.UUID    `json:"expert_id,omitempty"`
	Status    RequestStatus `json:"status"`
	Rating    *int          `json:"rating,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// ExpertRatingStats - агрегат оценок эксперта из Request Store
type ExpertRatingStats struct {
	Average float64
	Count   int64
}
