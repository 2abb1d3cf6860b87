// Package gateway maps transport connections onto a device.
//
// Each transport connection gets one session, identified by the connection
// ID. The session dispatches decoded requests to the device and translates
// device errors into wire status codes. A session that holds the device open
// releases it when its connection goes away, so a crashed or disconnected
// caller can never leave the device permanently busy.
package gateway
