// Package errors provides coded, actionable error messages for the vtree
// command line tools.
//
// Library packages return plain sentinel errors. At the edges (config
// loading, the CLI, the inspector) those are wrapped in an [*Error] that
// carries a stable code, a category, an explanation and a hint, and can
// point at the offending line of a configuration file.
//
// # Error Categories
//
//   - config: configuration files and values
//   - cli: command line usage
//   - render: render functions and the trees they return
//   - host: host adapter operations
//   - protocol: the inspector's HTTP and WebSocket surface
//
// # Usage
//
//	err := errors.New("V001").
//	    WithLocation("vtree.yaml", 4, 0).
//	    Wrap(parseErr)
//
//	errors.PrintError(err)
//	// ERROR V001: Invalid configuration file
//	//
//	//   vtree.yaml:4
//	//
//	//        3 │ demo:
//	//   →    4 │   items: three
//	//        5 │ inspect:
//	//
//	//   Hint: Check the file against the example in the README.
package errors
