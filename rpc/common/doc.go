// Package common provides the data structures shared by the client, the transports and the CLI.
// Nothing in this package performs I/O.
//
// Key Components:
//
//   - Command: a command name plus its ordered arguments. All NewXxxCommand functions,
//     BuildSet and BuildGet are pure functions producing a Command. Input that cannot be
//     encoded is rejected with an error of kind KindInvalidArgument.
//
//   - Location: the value part of SET. A tagged union of point, bounds, string (geohash or
//     string object) and GeoJSON. Coordinates classifies a plain coordinate list.
//
//   - Error: the single error type of the module. Use errors.Is with ErrInvalidArgument,
//     ErrTransport, ErrMalformedResponse or ErrServer to classify a failure.
//
//   - ClientConfig: connection parameters fixed at client construction.
//
//   - Logger: a dragonboat compatible logger with a consistent format.
package common
