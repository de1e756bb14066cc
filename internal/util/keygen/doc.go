// Package keygen generates RSA key pairs for SSH authentication.
//
// Keys are produced in PEM format (private) and OpenSSH authorized_keys
// format (public), suitable for distributing to fleet hosts as
// authorized keys for the deployment user.
package keygen
