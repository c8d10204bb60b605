/*
Package reports holds the local snapshot of the remote event list and merges
each freshly fetched list into it.

Model.Update walks the local snapshot and the remote list with two cursors.
Matching IDs are updated in place (only the repeat count can change), remote
IDs missing locally are inserted, and local IDs missing remotely are removed.
Each kind of change is reported to the registered Sinks once per maximal
contiguous run, so appending k new events to the log costs one insertion
notification rather than k, and a poll that finds nothing new produces a
single change notification covering the whole snapshot.

The remote list must be sorted by strictly increasing ID; the model does not
re-sort it.
*/
package reports
