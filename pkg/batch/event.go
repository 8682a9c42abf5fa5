package batch

// Event reports progress of a [Runner].
type Event any

type (
	// EventStart indicates that processing of a file has started.
	EventStart struct {
		Path string
	}

	// EventDone indicates that a file was processed. In dry-run mode the
	// output was not written.
	EventDone struct {
		Result *Result
		DryRun bool
	}

	// EventFail indicates that a file could not be processed.
	EventFail struct {
		Err *FileError
	}

	// EventSkip indicates that an input was ignored.
	EventSkip Skip
)
