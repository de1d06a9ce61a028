package policy

// Built-in allow-list for a zero-module Mac Pro 6,1 workstation kernel.
//
// Entries ending in $ keep exactly one option. Entries left open keep a whole
// family: anything added upstream later under the same prefix is kept too.
// Open entries stay open; anchoring them would drop options on upgrade.

func group(name string, entries ...Pattern) []Pattern {
	for i := range entries {
		entries[i].Group = name
	}
	return entries
}

func p(expr string) Pattern { return Pattern{Expr: expr} }

func pn(expr, note string) Pattern { return Pattern{Expr: expr, Note: note} }

// DefaultPatterns returns a fresh copy of the built-in pattern list.
func DefaultPatterns() []Pattern {
	var out []Pattern
	out = append(out, group("gpu",
		pn(`^DRM_RADEON$`, "legacy driver, kept as fallback"),
		p(`^DRM_RADEON_USERPTR$`),
		pn(`^DRM_QXL$`, "KVM macOS display"),
		pn(`^DRM_VKMS$`, "virtual KMS for testing"),
	)...)
	out = append(out, group("net-containers",
		p(`^BRIDGE$`),
		p(`^BRIDGE_NETFILTER$`),
		p(`^VETH$`),
		p(`^MACVLAN$`),
		p(`^IPVLAN$`),
		p(`^VXLAN$`),
		p(`^DUMMY$`),
		p(`^VLAN_8021Q`),
		p(`^BONDING$`),
		pn(`^TUN$`, "usually =y already"),
		p(`^TLS$`),
	)...)
	out = append(out, group("netfilter",
		pn(`^NF_`, "netfilter core"),
		pn(`^NFT_`, "nftables"),
		pn(`^NETFILTER_XT_`, "xtables matches and targets"),
		pn(`^IP_NF_`, "IPv4 netfilter"),
		pn(`^IP6_NF_`, "IPv6 netfilter"),
		pn(`^IP_SET`, "IP sets"),
		pn(`^IP_VS`, "IPVS for swarm"),
		pn(`^NETFILTER_NETLINK`, "netlink interface"),
	)...)
	out = append(out, group("nfs",
		p(`^NFS_FS$`),
		p(`^NFS_V[234]`),
		p(`^LOCKD`),
		p(`^SUNRPC`),
		p(`^RPCSEC_GSS`),
		p(`^FSCACHE`),
		p(`^CACHEFILES`),
		p(`^NFS_USE_KERNEL_DNS$`),
		p(`^NFS_DEBUG$`),
	)...)
	out = append(out, group("filesystems",
		p(`^HFSPLUS_FS$`),
		p(`^HFS_FS$`),
		pn(`^BLK_DEV_DM$`, "device mapper"),
		pn(`^DM_CRYPT$`, "LUKS"),
		p(`^DM_SNAPSHOT$`),
		p(`^DM_MIRROR$`),
		p(`^DM_ZERO$`),
		p(`^DM_THIN_PROVISIONING$`),
		p(`^DM_LOG_USERSPACE$`),
		pn(`^QUOTA`, "disk quotas"),
		pn(`^CIFS$`, "SMB client"),
		p(`^SMB_SERVER$`),
		p(`^ISO9660_FS$`),
		p(`^UDF_FS$`),
		pn(`^SQUASHFS`, "container images"),
		p(`^EROFS_FS$`),
	)...)
	out = append(out, group("wireless",
		pn(`^CFG80211$`, "needed by broadcom-wl DKMS"),
		p(`^MAC80211$`),
		p(`^LIB80211`),
	)...)
	out = append(out, group("usb",
		p(`^SND_USB_AUDIO$`),
		pn(`^USB_RTL8152$`, "USB 2.5GbE adapter"),
		p(`^HID_MULTITOUCH$`),
		p(`^USB_SERIAL$`),
		p(`^USB_SERIAL_GENERIC$`),
		p(`^USB_SERIAL_FTDI_SIO$`),
		p(`^USB_SERIAL_CH341$`),
		p(`^USB_SERIAL_CP210X$`),
		p(`^USB_ACM$`),
	)...)
	out = append(out, group("firewire",
		p(`^FIREWIRE$`),
		p(`^FIREWIRE_OHCI$`),
		p(`^FIREWIRE_SBP2$`),
		p(`^FIREWIRE_NET$`),
	)...)
	out = append(out, group("intel-platform",
		p(`^INTEL_POWERCLAMP$`),
		p(`^INTEL_RAPL`),
		p(`^INTEL_UNCORE`),
		p(`^INTEL_CSTATE$`),
	)...)
	out = append(out, group("crypto",
		p(`^CRYPTO_USER_API`),
		p(`^CRYPTO_USER$`),
		pn(`^CRYPTO_CRC32C`, "ext4, btrfs"),
		p(`^CRYPTO_CRCT10DIF`),
		p(`^CRYPTO_XXHASH$`),
		p(`^CRYPTO_BLAKE2B$`),
		p(`^CRYPTO_LZO$`),
		p(`^CRYPTO_LZ4`),
		p(`^CRYPTO_ZSTD$`),
		p(`^CRYPTO_DEFLATE$`),
		pn(`^CRYPTO_XTS$`, "disk encryption"),
		p(`^CRYPTO_ESSIV$`),
		p(`^CRYPTO_ECHAINIV$`),
		p(`^CRYPTO_CBC$`),
		p(`^CRYPTO_ECB$`),
		p(`^CRYPTO_CTR$`),
		p(`^CRYPTO_CMAC$`),
		p(`^CRYPTO_SEQIV$`),
		p(`^CRYPTO_AUTHENC$`),
		p(`^CRYPTO_CHACHA20POLY1305$`),
		p(`^CRYPTO_GCM$`),
		p(`^CRYPTO_CCM$`),
		p(`^CRYPTO_DES$`),
		p(`^CRYPTO_ARC4$`),
	)...)
	out = append(out, group("block",
		p(`^BLK_DEV_LOOP$`),
		p(`^BLK_DEV_NBD$`),
	)...)
	out = append(out, group("nvme",
		p(`^NVME_CORE$`),
		p(`^BLK_DEV_NVME$`),
		p(`^NVME_KEYRING$`),
		p(`^NVME_AUTH$`),
	)...)
	out = append(out, group("infra",
		p(`^DNOTIFY$`),
		p(`^DNS_RESOLVER$`),
		p(`^KEYS_REQUEST_CACHE$`),
		pn(`^ZRAM$`, "compressed RAM swap"),
		pn(`^NET_SCH_`, "traffic schedulers"),
		pn(`^NET_CLS_`, "traffic classifiers"),
		pn(`^NET_ACT_`, "traffic actions"),
		p(`^NET_EMATCH`),
		pn(`^TCF_`, "tc filters"),
	)...)
	out = append(out, group("acpi",
		p(`^ACPI_EC_DEBUGFS$`),
		p(`^ACPI_VIDEO$`),
		p(`^ACPI_TAD$`),
	)...)
	out = append(out, group("virtio",
		p(`^VIRTIO_BALLOON$`),
	)...)
	return out
}
