// Package stream reads oversized sources through a fixed-size window so
// documents never need to be resident in memory all at once. The Scanner
// follows the bufio.Scanner idiom: Scan advances, Window returns the
// current slice, Err reports the terminal error. Each window ends at a
// natural break found near 80% of the buffer size, and a configurable
// overlap from the window tail is replayed at the head of the next window
// so boundary-spanning content is never lost between windows.
package stream
