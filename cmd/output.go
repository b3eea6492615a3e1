package cmd

import (
	"io"
	"os"
)

// Command I/O is routed through rootCmd so tests can swap the streams with SetIn/SetOut/SetErr.
var (
	inReaderFunc  = func() io.Reader { return os.Stdin }
	outWriterFunc = func() io.Writer { return os.Stdout }
	errWriterFunc = func() io.Writer { return os.Stderr }
)

func init() {
	inReaderFunc = func() io.Reader { return rootCmd.InOrStdin() }
	outWriterFunc = func() io.Writer { return rootCmd.OutOrStdout() }
	errWriterFunc = func() io.Writer { return rootCmd.ErrOrStderr() }
}

func inReader() io.Reader {
	return inReaderFunc()
}

func outWriter() io.Writer {
	return outWriterFunc()
}

func errWriter() io.Writer {
	return errWriterFunc()
}
