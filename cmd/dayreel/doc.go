// Command dayreel edits and renders one-second-a-day clips from the terminal:
// inspect source media, assemble a day's timeline, render it to an MP4, and
// browse the exported clip catalog.
package main
