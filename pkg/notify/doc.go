// Package notify is the notification port used by forms and flows. Callers
// inject a Notifier; Store keeps alerts for the next rendered page and
// Terminal prints them to a console.
package notify
