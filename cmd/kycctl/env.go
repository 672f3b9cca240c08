package main

import "os"

// lookupEnv is swapped in tests.
var lookupEnv = os.LookupEnv
