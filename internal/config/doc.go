// Package config holds the appliance layout and tool settings used by the
// renewal workflow, stored in YAML format.
//
// Every path the workflow reads or writes comes from a *Config passed in
// by the caller, so tests point the whole workflow at a temporary
// directory without touching the environment. Settings are read from
// ~/.config/synorenew/config.yaml (or --config); a missing file yields
// the DSM defaults returned by New.
//
// Example config.yaml:
//
//	certs_root: /usr/syno/etc/certificate
//	temp_root: /tmp/acme-renew
//	bundle_glob: "*.pem"
//	files:
//	  cert: cert.pem
//	  key: privkey.pem
//	  fullchain: fullchain.pem
//	  ca_chain: chain.pem
//	acmesh:
//	  path: /usr/local/share/acme.sh/acme.sh
//	  dns_sleep: 180
//	  env:
//	    CF_Token: xxxx
//	servicectl_path: /usr/syno/sbin/synoservicectl
//	reload_services: [nginx]
//	vpn:
//	  keys_dir: /usr/syno/etc/packages/VPNCenter/openvpn/keys
//	  service: pkgctl-VPNCenter
//	  file_map:
//	    cert.pem: server.crt
//	    privkey.pem: server.key
//	    fullchain.pem: ca_bundle.crt
//	    chain.pem: ca.crt
//
// ACMESH_PATH in the environment overrides acmesh.path (see ApplyEnv).
//
// # Certificate archive layout
//
//	<certs_root>/_archive/DEFAULT        id of the default certificate
//	<certs_root>/_archive/INFO           JSON services manifest keyed by id
//	<certs_root>/_archive/<id>/*.pem     the default certificate bundle
//	<certs_root>/<subscriber>/<service>/ per-service copies of the bundle
package config
