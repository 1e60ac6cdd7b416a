package application

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// Certificate types and their machine pools. Every application is assigned a
// machine from the pool matching its certificate type at submission.
const (
	CertTypeUSBToken  = "USB Crypto Token"
	CertTypeSmartCard = "Smart Card"
	CertTypeSoftcert  = "Softcert"
)

type machineSpec struct {
	id     string
	name   string
	config map[string]string
}

var machinePools = map[string][]machineSpec{
	CertTypeUSBToken: {
		{id: "USB-001", name: "USB Token Machine Alpha", config: map[string]string{"encryption": "AES-256", "driver": "PKCS#11"}},
		{id: "USB-002", name: "USB Token Machine Beta", config: map[string]string{"encryption": "RSA-2048", "driver": "PKCS#11"}},
		{id: "USB-003", name: "USB Token Machine Gamma", config: map[string]string{"encryption": "ECC-P256", "driver": "PKCS#11"}},
	},
	CertTypeSmartCard: {
		{id: "SC-001", name: "Smart Card Reader Alpha", config: map[string]string{"protocol": "T=1", "voltage": "3V"}},
		{id: "SC-002", name: "Smart Card Reader Beta", config: map[string]string{"protocol": "T=0", "voltage": "5V"}},
		{id: "SC-003", name: "Smart Card Reader Gamma", config: map[string]string{"protocol": "T=1", "voltage": "1.8V"}},
	},
	CertTypeSoftcert: {
		{id: "SOFT-001", name: "Software Certificate Engine Alpha", config: map[string]string{"keystore": "PKCS#12", "algorithm": "RSA"}},
		{id: "SOFT-002", name: "Software Certificate Engine Beta", config: map[string]string{"keystore": "JKS", "algorithm": "ECDSA"}},
		{id: "SOFT-003", name: "Software Certificate Engine Gamma", config: map[string]string{"keystore": "PKCS#12", "algorithm": "EdDSA"}},
	},
}

// MachinePools exposes the pool catalog for the read-only endpoint.
func MachinePools() map[string][]Machine {
	pools := make(map[string][]Machine, len(machinePools))
	for certType, specs := range machinePools {
		machines := make([]Machine, 0, len(specs))
		for _, spec := range specs {
			machines = append(machines, spec.toMachine(time.Time{}))
		}
		pools[certType] = machines
	}
	return pools
}

// assignMachine picks a random machine from the pool for the certificate type.
func assignMachine(certificateType string, now time.Time) (Machine, error) {
	pool, ok := machinePools[certificateType]
	if !ok {
		return Machine{}, fmt.Errorf("invalid certificate type: %s", certificateType)
	}
	return pool[rand.IntN(len(pool))].toMachine(now), nil
}

func (s machineSpec) toMachine(assignedAt time.Time) Machine {
	cfg := make(map[string]string, len(s.config))
	for k, v := range s.config {
		cfg[k] = v
	}
	return Machine{ID: s.id, Name: s.name, Config: cfg, AssignedAt: assignedAt}
}
