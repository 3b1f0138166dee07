// Package acme issues certificates by running acme.sh.
//
// Nothing here speaks ACME. The package builds the acme.sh command line,
// runs it through an executor.CommandExecutor and turns a non-zero exit
// into an EXEC error carrying acme.sh's combined output.
//
// # Prerequisites
//
// acme.sh must be installed on the appliance, normally with:
//
//	curl https://get.acme.sh | sh -s email=admin@example.com
//
// The default location is /usr/local/share/acme.sh/acme.sh; override it with
// ACMESH_PATH or acmesh.path in the config file.
//
// # Issuing
//
//	client := acme.NewClient(cfg, executor.NewSystemExecutor())
//	err := client.Issue(acme.Request{
//	    Domain:      "nas.example.com",
//	    DNSProvider: "dns_cf",
//	    OutputDir:   "/tmp/acme-renew/certs-2024-01-02_030405-new",
//	})
//
// which runs
//
//	acme.sh --issue --dns dns_cf -d nas.example.com \
//	    --cert-file <out>/cert.pem --key-file <out>/privkey.pem \
//	    --fullchain-file <out>/fullchain.pem --ca-file <out>/chain.pem \
//	    --dnssleep 180 --force
//
// # DNS provider credentials
//
// acme.sh reads provider credentials (CF_Token, GD_Key, ...) from its
// environment. They are inherited from the calling process; entries under
// acmesh.env in the config file are appended on top. See
// https://github.com/Neilpang/acme.sh/wiki/dnsapi for the variable names.
//
// # Testing
//
// Pass an executor.MockExecutor to NewClient and inspect its Calls.
package acme
