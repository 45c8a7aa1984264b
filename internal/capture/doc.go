// Package capture reads and writes capture files of accessibility bus
// traffic.
//
// A capture file holds JSON lines, one event.Message per line:
//
//	{"interface":"org.a11y.atspi.Event.Object","member":"StateChanged","sender":":1.7","path":"/org/a11y/atspi/accessible/12","body":{"kind":"focused","detail1":1,"detail2":0,"any_data":{"type":"i","value":0},"properties":{}}}
//
// Blank lines are ignored. Follow tails a growing capture file, picking up
// appended lines as fsnotify reports writes, and reopens the file when it
// is replaced.
package capture
