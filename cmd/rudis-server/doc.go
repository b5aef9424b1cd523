// Command rudis-server runs the rudis key-value server.
//
//	rudis-server [--config FILE] [--log-level LEVEL] [ADDRESS]
//
// ADDRESS defaults to 127.0.0.1:6378 and overrides server.redis.addr from
// the config file or RUDIS_SERVER__REDIS__ADDR. The server runs until
// SIGINT or SIGTERM, then stops accepting, closes client connections and
// exits.
package main
