// Command rudis-cli is the command-line client for rudis.
//
//	rudis-cli [-s HOST:PORT] get KEY
//	rudis-cli [-s HOST:PORT] set KEY VALUE
//	rudis-cli [-s HOST:PORT] del KEY
//	rudis-cli [-s HOST:PORT] bench [-c CLIENTS] [-n REQUESTS]
//	rudis-cli [-s HOST:PORT] [COMMAND ARG...]
//
// Without a command it starts an interactive prompt.
package main
