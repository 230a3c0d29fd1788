package templates

import "time"

type Option func(*EmailData)

// WithTime stamps the event time, shown in UTC.
func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.TimeAt = utc
		d.Time = utc.Format("02 January 2006, 15:04")
	}
}

// NewWelcomeData builds the data for the Welcome template, stamped now
// unless an option overrides it.
func NewWelcomeData(appName, name, email string, opts ...Option) map[string]any {
	d := EmailData{Name: name, Email: email, Type: Welcome, AppName: appName}
	WithTime(time.Now())(&d)
	for _, opt := range opts {
		opt(&d)
	}
	return ToMap(d)
}
