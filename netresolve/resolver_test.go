package netresolve

import (
	"context"
	"log/slog"
	"net"
	"os"
	"testing"

	"github.com/machinenfs/docker-machine-nfs/config"
	"github.com/machinenfs/docker-machine-nfs/hostexec/hostexectest"
	"github.com/machinenfs/docker-machine-nfs/machine"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const vboxVMInfo = `name="test"
nic1="nat"
hostonlyadapter2="vboxnet0"
nic2="hostonly"
`

const vboxHostOnlyIfs = `Name:            vboxnet1
GUID:            786f6276-656e-4174-8000-0a0027000001
IPAddress:       192.168.57.1
NetworkMask:     255.255.255.0

Name:            vboxnet0
GUID:            786f6276-656e-4074-8000-0a0027000000
DHCP:            Disabled
IPAddress:       192.168.56.1
NetworkMask:     255.255.255.0
`

const parallelsNetInfo = `Network ID: Shared
Type: shared
Bound To: vnic0
Parallels adapter:
	IP address: 10.211.55.2
	IPv4 address: 10.211.55.2
	IPv4 subnet mask: 255.255.255.0
`

const darwinRouteGet = `   route to: 172.16.45.130
destination: 172.16.45.0
       mask: 255.255.255.0
  interface: vmnet8
      flags: <UP,DONE,CLONING>
`

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, nil))

func testInterfaces() ([]HostInterface, error) {
	return []HostInterface{
		{Name: "lo0", Addrs: []string{"127.0.0.1/8", "::1/128"}},
		{Name: "en0", Addrs: []string{"fe80::1/64", "192.168.1.20/24"}},
		{Name: "vmnet8", Addrs: []string{"172.16.45.1/24"}},
		{Name: "bridge100", Addrs: []string{"192.168.64.1/24"}},
	}, nil
}

func newTestResolver(runner *hostexectest.FakeRunner) *Resolver {
	return NewResolver(testLogger, runner, testInterfaces, DarwinRouteLookup)
}

func requireConfigurationErr(t *testing.T, err error, msg string) {
	require.Error(t, err)
	kind, ok := config.KindOf(err)
	require.True(t, ok, err.Error())
	assert.Equal(t, config.KindConfiguration, kind)
	assert.Contains(t, err.Error(), msg)
}

func TestResolveVirtualBox(t *testing.T) {
	runner := hostexectest.NewFakeRunner().
		On("VBoxManage showvminfo test --machinereadable", vboxVMInfo).
		On("VBoxManage list hostonlyifs", vboxHostOnlyIfs)

	topo, err := newTestResolver(runner).Resolve(context.Background(), Request{
		MachineName: "test",
		Driver:      machine.DriverVirtualBox,
		GuestIP:     net.ParseIP("192.168.56.101"),
	})
	require.NoError(t, err)

	assert.Equal(t, "vboxnet0", topo.NetworkID)
	assert.True(t, topo.HostIP.Equal(net.ParseIP("192.168.56.1")))
	assert.True(t, topo.GuestIP.Equal(net.ParseIP("192.168.56.101")))
	assert.False(t, topo.RequiresNonReservedPorts())
}

func TestResolveVirtualBoxMissingValues(t *testing.T) {
	req := Request{MachineName: "test", Driver: machine.DriverVirtualBox, GuestIP: net.ParseIP("192.168.56.101")}

	runner := hostexectest.NewFakeRunner().
		On("VBoxManage showvminfo test --machinereadable", "name=\"test\"\nnic1=\"nat\"\n")
	_, err := newTestResolver(runner).Resolve(context.Background(), req)
	requireConfigurationErr(t, err, "could not find the virtualbox net name")

	runner = hostexectest.NewFakeRunner().
		On("VBoxManage showvminfo test --machinereadable", vboxVMInfo).
		On("VBoxManage list hostonlyifs", "Name: vboxnet1\nIPAddress: 192.168.57.1\n")
	_, err = newTestResolver(runner).Resolve(context.Background(), req)
	requireConfigurationErr(t, err, "could not find the virtualbox net IP")
}

func TestResolveParallels(t *testing.T) {
	runner := hostexectest.NewFakeRunner().On("prlsrvctl net info Shared", parallelsNetInfo)

	topo, err := newTestResolver(runner).Resolve(context.Background(), Request{
		MachineName: "test",
		Driver:      machine.DriverParallels,
		GuestIP:     net.ParseIP("10.211.55.5"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Shared", topo.NetworkID)
	assert.True(t, topo.HostIP.Equal(net.ParseIP("10.211.55.2")))

	runner = hostexectest.NewFakeRunner().On("prlsrvctl net info Shared", "Network ID: Shared\n")
	_, err = newTestResolver(runner).Resolve(context.Background(), Request{
		MachineName: "test",
		Driver:      machine.DriverParallels,
		GuestIP:     net.ParseIP("10.211.55.5"),
	})
	requireConfigurationErr(t, err, "could not find the parallels net IP")
}

func TestResolveRoutedUsesRouteInterface(t *testing.T) {
	runner := hostexectest.NewFakeRunner().On("route -n get 172.16.45.130", darwinRouteGet)

	topo, err := newTestResolver(runner).Resolve(context.Background(), Request{
		MachineName: "test",
		Driver:      machine.DriverVMwareFusion,
		GuestIP:     net.ParseIP("172.16.45.130"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Shared", topo.NetworkID)
	assert.True(t, topo.HostIP.Equal(net.ParseIP("172.16.45.1")))
	assert.True(t, topo.RequiresNonReservedPorts())
}

func TestResolveRoutedFallsBackToSubnet(t *testing.T) {
	runner := hostexectest.NewFakeRunner().OnErr("route -n get 192.168.64.7", errors.New("exit status 1"))

	topo, err := newTestResolver(runner).Resolve(context.Background(), Request{
		MachineName: "test",
		Driver:      machine.DriverXhyve,
		GuestIP:     net.ParseIP("192.168.64.7"),
	})
	require.NoError(t, err)
	assert.True(t, topo.HostIP.Equal(net.ParseIP("192.168.64.1")))

	runner = hostexectest.NewFakeRunner().OnErr("route -n get 10.9.9.9", errors.New("exit status 1"))
	_, err = newTestResolver(runner).Resolve(context.Background(), Request{
		MachineName: "test",
		Driver:      machine.DriverHyperkit,
		GuestIP:     net.ParseIP("10.9.9.9"),
	})
	requireConfigurationErr(t, err, "could not find the host IP")
}

func TestResolveHostIPOverride(t *testing.T) {
	override := net.ParseIP("192.168.99.1")

	for _, driver := range []machine.Driver{machine.DriverParallels, machine.DriverVMware, machine.DriverHyperkit} {
		runner := hostexectest.NewFakeRunner()
		topo, err := newTestResolver(runner).Resolve(context.Background(), Request{
			MachineName:    "test",
			Driver:         driver,
			GuestIP:        net.ParseIP("192.168.99.100"),
			HostIPOverride: override,
		})
		require.NoError(t, err, string(driver))
		assert.True(t, topo.HostIP.Equal(override))
		assert.Empty(t, runner.Calls())
	}

	// VirtualBox still needs the adapter name.
	runner := hostexectest.NewFakeRunner().On("VBoxManage showvminfo test --machinereadable", vboxVMInfo)
	topo, err := newTestResolver(runner).Resolve(context.Background(), Request{
		MachineName:    "test",
		Driver:         machine.DriverVirtualBox,
		GuestIP:        net.ParseIP("192.168.56.101"),
		HostIPOverride: override,
	})
	require.NoError(t, err)
	assert.Equal(t, "vboxnet0", topo.NetworkID)
	assert.True(t, topo.HostIP.Equal(override))
	assert.False(t, runner.Called("VBoxManage list hostonlyifs"))
}

func TestResolveUnsupportedDriver(t *testing.T) {
	runner := hostexectest.NewFakeRunner()

	_, err := newTestResolver(runner).Resolve(context.Background(), Request{
		MachineName: "test",
		Driver:      machine.ParseDriver("hyperv"),
		GuestIP:     net.ParseIP("192.168.1.5"),
	})
	requireConfigurationErr(t, err, "hyperv")
	assert.ErrorIs(t, err, ErrUnsupportedDriver)
	assert.Empty(t, runner.Calls())
}

func TestParsers(t *testing.T) {
	assert.Equal(t, "vboxnet3", parseVBoxHostOnlyAdapter("hostonlyadapter1=\"none\"\nhostonlyadapter2=\"vboxnet3\"\n"))
	assert.Equal(t, "", parseVBoxHostOnlyAdapter("nic1=\"nat\"\n"))
	assert.Equal(t, "192.168.57.1", parseVBoxHostOnlyIfIP(vboxHostOnlyIfs, "vboxnet1"))
	assert.Equal(t, "", parseVBoxHostOnlyIfIP(vboxHostOnlyIfs, "vboxnet9"))
	assert.Equal(t, "10.211.55.2", parseParallelsSharedIP(parallelsNetInfo))
	assert.Equal(t, "vmnet8", parseDarwinRouteInterface(darwinRouteGet))
	assert.Equal(t, "virbr0", parseLinuxRouteInterface("192.168.122.5 dev virbr0 src 192.168.122.1 uid 1000\n    cache\n"))
	assert.Equal(t, "", parseLinuxRouteInterface("unreachable\n"))
}

func TestInterfaceHelpers(t *testing.T) {
	ifaces, err := testInterfaces()
	require.NoError(t, err)

	assert.True(t, interfaceIPv4(ifaces, "en0").Equal(net.ParseIP("192.168.1.20")))
	assert.Nil(t, interfaceIPv4(ifaces, "en9"))
	assert.True(t, subnetIPv4(ifaces, net.ParseIP("172.16.45.200")).Equal(net.ParseIP("172.16.45.1")))
	assert.Nil(t, subnetIPv4(ifaces, net.ParseIP("172.16.45.1")))
}
