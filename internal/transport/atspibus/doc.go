// Package atspibus connects the event core to the accessibility bus.
//
// It converts between godbus signals and event.Message: an AT-SPI event
// signal is named "<interface>.<member>" and carries the body
// (siiva{sv}): kind, detail1, detail2, any_data and properties. Older
// toolkits omit the properties dictionary; such bodies decode with an empty
// map.
//
// Conn dials the accessibility bus, whose address is published by the
// org.a11y.Bus service on the session bus, installs match rules and
// streams incoming messages. The AT_SPI_BUS_ADDRESS environment variable
// overrides the lookup.
package atspibus
