/*
Package types defines the data structures shared by every reportwatch package.

Report is the wire-side shape of one entry in the remote event list; Event is
the local record the synchronizer keeps. NewEvent folds the remote year and
tick-of-year into a single Time and the bright flag into the palette index.

Time counts game ticks. A day is 1200 ticks, a month 28 days and a year 12
months, so Time.Date can decompose any value without a calendar table:

	t := types.Time(100) + 125*types.TicksPerYear
	fmt.Println(t.Date()) // 1st Granite 125

ConnectionState and Source are small enums used by the manager and the
configuration layer.
*/
package types
