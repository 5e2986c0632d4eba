package loop

// Package loop provides the interactive scheduling loop and a
// scheduler-agnostic timer abstraction. Background goroutines never touch UI
// state; they post closures that the loop runs one at a time. Front-ends plug
// their own poster (fyne.Do, a Bubble Tea program, or Loop) into a Clock.
