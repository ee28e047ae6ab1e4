// Package mail provides the notification capability used when points of
// interest are deleted. LocalMailer prints messages to a writer; CloudMailer
// publishes them to a RabbitMQ queue for delivery by a separate worker. The
// implementation is chosen once at startup from configuration.
package mail
