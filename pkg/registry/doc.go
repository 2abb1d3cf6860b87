// Package registry tracks device nodes and advertises them on the local
// network.
//
// A NodeRegistry assigns each registered device a major/minor number and a
// node path ("/dev/<name>"), mirroring how a character device registers
// itself with the kernel. Nodes count opens so diagnostics can report the
// current holder count and the lifetime total.
//
// The optional mDNS advertiser announces registered nodes as
// "_chardev._tcp" services so session clients can find gateways without
// configuration.
package registry
