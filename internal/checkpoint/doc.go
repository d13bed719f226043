// Package checkpoint stores and loads network weights as an ordered list of
// named float32 arrays.
//
//	File structure (the whole stream is gzip-compressed):
//	  [4 bytes: Magic "RNCK"]
//	  [4 bytes: Version (uint32 LE)]
//	  [8 bytes: Header Size (uint64 LE)]
//	  [Header: JSON metadata, including the SHA-256 of the data section]
//	  [Tensor data: float32 LE, in header order]
//
// Arrays are bound to a network positionally: the i-th array of the file
// goes to the i-th parameter slot. Names are informational.
//
// Example usage:
//
//	// Save
//	entries := checkpoint.Entries(net.Parameters())
//	if err := checkpoint.Save("resnet20.rnck", entries, checkpoint.Meta{Model: net.String()}); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Load
//	f, err := checkpoint.Load("resnet20.rnck")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := checkpoint.Bind(net, f); err != nil {
//	    log.Fatal(err)
//	}
package checkpoint
