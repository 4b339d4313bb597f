package models

import "time"

// LogEntry is one access record for a completed HTTP request.
type LogEntry struct {
	ID             string    `json:"id" gorm:"primaryKey;type:varchar(36)" bson:"_id"`
	Timestamp      time.Time `json:"timestamp" gorm:"index" bson:"timestamp"`
	Method         string    `json:"method" gorm:"type:varchar(10)" bson:"method"`
	URL            string    `json:"url" bson:"url"`
	StatusCode     int       `json:"statusCode" bson:"statusCode"`
	ResponseTimeMs int64     `json:"responseTime" bson:"responseTime"`
	IP             string    `json:"ip" gorm:"type:varchar(64)" bson:"ip"`
	UserAgent      string    `json:"userAgent" bson:"userAgent"`
	RequestBody    string    `json:"requestBody,omitempty" gorm:"type:text" bson:"requestBody,omitempty"`
	Success        bool      `json:"success" bson:"success"`
	Level          string    `json:"level" gorm:"type:varchar(10);index" bson:"level"`
	Service        string    `json:"service,omitempty" gorm:"type:varchar(32);index" bson:"service,omitempty"`
	Action         string    `json:"action,omitempty" gorm:"type:varchar(32)" bson:"action,omitempty"`
}

// TableName keeps the collection name used for access logs.
func (LogEntry) TableName() string {
	return "logs"
}

// LogFilter narrows a log query.
type LogFilter struct {
	Service string
	Level   string
	Start   *time.Time
	End     *time.Time
	Limit   int
}

// LogStats summarises a set of log entries.
type LogStats struct {
	Total               int            `json:"total"`
	Success             int            `json:"success"`
	Errors              int            `json:"errors"`
	Warnings            int            `json:"warnings"`
	AverageResponseTime int64          `json:"averageResponseTime"`
	TopActions          map[string]int `json:"topActions"`
	StatusCodes         map[string]int `json:"statusCodes"`
}
