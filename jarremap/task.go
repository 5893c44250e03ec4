package jarremap

// Task describes one input jar to remap into one output jar (ยง4.8/ยง5).
// Every task in a RemapJars call shares the same Mappings/from/to and the
// cross-task class byte cache, but reads and writes its own archive
// independently.
type Task struct {
	// SourcePath is the jar to read.
	SourcePath string
	// DestPath is the jar to write; RemapJars creates or truncates it.
	DestPath string
	// Resources visits every non-class entry; nil uses DefaultResourceVisitor.
	Resources ResourceVisitor
}

// Result is what RemapJars reports for one Task.
type Result struct {
	Task          Task
	ClassesWritten int
	Err           error
}
