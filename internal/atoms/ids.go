package atoms

// ID names one entry of the atom table.
type ID int

const (
	Cardinal ID = iota
	Window
	Pixmap
	Atom
	String
	CompoundText
	UTF8String

	Manager

	WMColormapWindows
	WMProtocols
	WMState
	WMChangeState
	WMDeleteWindow
	WMTakeFocus
	WMName
	WMIconName
	WMClass
	WMWindowRole
	WMClientMachine
	WMCommand
	WMClientLeader
	WMTransientFor
	MotifWMHints
	MotifWMInfo

	SMClientID

	NetWMFullPlacement

	NetSupported
	NetClientList
	NetClientListStacking
	NetNumberOfDesktops
	NetDesktopGeometry
	NetDesktopViewport
	NetCurrentDesktop
	NetDesktopNames
	NetActiveWindow
	NetWorkarea
	NetSupportingWMCheck
	NetDesktopLayout
	NetShowingDesktop

	NetCloseWindow
	NetWMMoveresize
	NetMoveresizeWindow
	NetRequestFrameExtents
	NetRestackWindow

	NetStartupID

	NetWMName
	NetWMVisibleName
	NetWMIconName
	NetWMVisibleIconName
	NetWMDesktop
	NetWMWindowType
	NetWMState
	NetWMStrut
	NetWMStrutPartial
	NetWMIcon
	NetWMIconGeometry
	NetWMPID
	NetWMAllowedActions
	NetWMWindowOpacity
	NetWMUserTime
	KDENetWMFrameStrut
	NetFrameExtents

	NetWMPing
	NetWMSyncRequest
	NetWMSyncRequestCounter

	NetWMWindowTypeDesktop
	NetWMWindowTypeDock
	NetWMWindowTypeToolbar
	NetWMWindowTypeMenu
	NetWMWindowTypeUtility
	NetWMWindowTypeSplash
	NetWMWindowTypeDialog
	NetWMWindowTypeNormal
	NetWMWindowTypePopupMenu

	// _NET_WM_MOVERESIZE direction codes.
	NetWMMoveresizeSizeTopLeft
	NetWMMoveresizeSizeTop
	NetWMMoveresizeSizeTopRight
	NetWMMoveresizeSizeRight
	NetWMMoveresizeSizeBottomRight
	NetWMMoveresizeSizeBottom
	NetWMMoveresizeSizeBottomLeft
	NetWMMoveresizeSizeLeft
	NetWMMoveresizeMove
	NetWMMoveresizeSizeKeyboard
	NetWMMoveresizeMoveKeyboard
	NetWMMoveresizeCancel

	NetWMActionMove
	NetWMActionResize
	NetWMActionMinimize
	NetWMActionShade
	NetWMActionMaximizeHorz
	NetWMActionMaximizeVert
	NetWMActionFullscreen
	NetWMActionChangeDesktop
	NetWMActionClose
	NetWMActionAbove
	NetWMActionBelow

	NetWMStateModal
	NetWMStateMaximizedVert
	NetWMStateMaximizedHorz
	NetWMStateShaded
	NetWMStateSkipTaskbar
	NetWMStateSkipPager
	NetWMStateHidden
	NetWMStateFullscreen
	NetWMStateAbove
	NetWMStateBelow
	NetWMStateDemandsAttention

	// _NET_WM_STATE client message actions.
	NetWMStateAdd
	NetWMStateRemove
	NetWMStateToggle

	// _NET_DESKTOP_LAYOUT orientation and starting corner.
	NetWMOrientationHorz
	NetWMOrientationVert
	NetWMTopLeft
	NetWMTopRight
	NetWMBottomRight
	NetWMBottomLeft

	KDEWMChangeState
	KDENetWMWindowTypeOverride

	OpenboxPID
	OBTheme
	OBConfigFile
	OBWMActionUndecorate
	OBWMStateUndecorated
	OBControl
	OBVersion
	OBAppRole
	OBAppTitle
	OBAppName
	OBAppClass
	OBAppGroupName
	OBAppGroupClass
	OBAppType

	// NumIDs is the size of the table; it is not a valid ID.
	NumIDs
)

// entry describes how a table slot is filled. Named entries are interned on
// the server; fixed entries carry a published protocol constant.
type entry struct {
	name  string
	fixed bool
	value uint32
}

func named(name string) entry { return entry{name: name} }
func fixedValue(v uint32) entry { return entry{fixed: true, value: v} }

var entries = [NumIDs]entry{
	Cardinal:     named("CARDINAL"),
	Window:       named("WINDOW"),
	Pixmap:       named("PIXMAP"),
	Atom:         named("ATOM"),
	String:       named("STRING"),
	CompoundText: named("COMPOUND_TEXT"),
	UTF8String:   named("UTF8_STRING"),

	Manager: named("MANAGER"),

	WMColormapWindows: named("WM_COLORMAP_WINDOWS"),
	WMProtocols:       named("WM_PROTOCOLS"),
	WMState:           named("WM_STATE"),
	WMChangeState:     named("WM_CHANGE_STATE"),
	WMDeleteWindow:    named("WM_DELETE_WINDOW"),
	WMTakeFocus:       named("WM_TAKE_FOCUS"),
	WMName:            named("WM_NAME"),
	WMIconName:        named("WM_ICON_NAME"),
	WMClass:           named("WM_CLASS"),
	WMWindowRole:      named("WM_WINDOW_ROLE"),
	WMClientMachine:   named("WM_CLIENT_MACHINE"),
	WMCommand:         named("WM_COMMAND"),
	WMClientLeader:    named("WM_CLIENT_LEADER"),
	WMTransientFor:    named("WM_TRANSIENT_FOR"),
	MotifWMHints:      named("_MOTIF_WM_HINTS"),
	MotifWMInfo:       named("_MOTIF_WM_INFO"),

	SMClientID: named("SM_CLIENT_ID"),

	NetWMFullPlacement: named("_NET_WM_FULL_PLACEMENT"),

	NetSupported:          named("_NET_SUPPORTED"),
	NetClientList:         named("_NET_CLIENT_LIST"),
	NetClientListStacking: named("_NET_CLIENT_LIST_STACKING"),
	NetNumberOfDesktops:   named("_NET_NUMBER_OF_DESKTOPS"),
	NetDesktopGeometry:    named("_NET_DESKTOP_GEOMETRY"),
	NetDesktopViewport:    named("_NET_DESKTOP_VIEWPORT"),
	NetCurrentDesktop:     named("_NET_CURRENT_DESKTOP"),
	NetDesktopNames:       named("_NET_DESKTOP_NAMES"),
	NetActiveWindow:       named("_NET_ACTIVE_WINDOW"),
	NetWorkarea:           named("_NET_WORKAREA"),
	NetSupportingWMCheck:  named("_NET_SUPPORTING_WM_CHECK"),
	NetDesktopLayout:      named("_NET_DESKTOP_LAYOUT"),
	NetShowingDesktop:     named("_NET_SHOWING_DESKTOP"),

	NetCloseWindow:         named("_NET_CLOSE_WINDOW"),
	NetWMMoveresize:        named("_NET_WM_MOVERESIZE"),
	NetMoveresizeWindow:    named("_NET_MOVERESIZE_WINDOW"),
	NetRequestFrameExtents: named("_NET_REQUEST_FRAME_EXTENTS"),
	NetRestackWindow:       named("_NET_RESTACK_WINDOW"),

	NetStartupID: named("_NET_STARTUP_ID"),

	NetWMName:            named("_NET_WM_NAME"),
	NetWMVisibleName:     named("_NET_WM_VISIBLE_NAME"),
	NetWMIconName:        named("_NET_WM_ICON_NAME"),
	NetWMVisibleIconName: named("_NET_WM_VISIBLE_ICON_NAME"),
	NetWMDesktop:         named("_NET_WM_DESKTOP"),
	NetWMWindowType:      named("_NET_WM_WINDOW_TYPE"),
	NetWMState:           named("_NET_WM_STATE"),
	NetWMStrut:           named("_NET_WM_STRUT"),
	NetWMStrutPartial:    named("_NET_WM_STRUT_PARTIAL"),
	NetWMIcon:            named("_NET_WM_ICON"),
	NetWMIconGeometry:    named("_NET_WM_ICON_GEOMETRY"),
	NetWMPID:             named("_NET_WM_PID"),
	NetWMAllowedActions:  named("_NET_WM_ALLOWED_ACTIONS"),
	NetWMWindowOpacity:   named("_NET_WM_WINDOW_OPACITY"),
	NetWMUserTime:        named("_NET_WM_USER_TIME"),
	KDENetWMFrameStrut:   named("_KDE_NET_WM_FRAME_STRUT"),
	NetFrameExtents:      named("_NET_FRAME_EXTENTS"),

	NetWMPing:               named("_NET_WM_PING"),
	NetWMSyncRequest:        named("_NET_WM_SYNC_REQUEST"),
	NetWMSyncRequestCounter: named("_NET_WM_SYNC_REQUEST_COUNTER"),

	NetWMWindowTypeDesktop:   named("_NET_WM_WINDOW_TYPE_DESKTOP"),
	NetWMWindowTypeDock:      named("_NET_WM_WINDOW_TYPE_DOCK"),
	NetWMWindowTypeToolbar:   named("_NET_WM_WINDOW_TYPE_TOOLBAR"),
	NetWMWindowTypeMenu:      named("_NET_WM_WINDOW_TYPE_MENU"),
	NetWMWindowTypeUtility:   named("_NET_WM_WINDOW_TYPE_UTILITY"),
	NetWMWindowTypeSplash:    named("_NET_WM_WINDOW_TYPE_SPLASH"),
	NetWMWindowTypeDialog:    named("_NET_WM_WINDOW_TYPE_DIALOG"),
	NetWMWindowTypeNormal:    named("_NET_WM_WINDOW_TYPE_NORMAL"),
	NetWMWindowTypePopupMenu: named("_NET_WM_WINDOW_TYPE_POPUP_MENU"),

	NetWMMoveresizeSizeTopLeft:     fixedValue(0),
	NetWMMoveresizeSizeTop:         fixedValue(1),
	NetWMMoveresizeSizeTopRight:    fixedValue(2),
	NetWMMoveresizeSizeRight:       fixedValue(3),
	NetWMMoveresizeSizeBottomRight: fixedValue(4),
	NetWMMoveresizeSizeBottom:      fixedValue(5),
	NetWMMoveresizeSizeBottomLeft:  fixedValue(6),
	NetWMMoveresizeSizeLeft:        fixedValue(7),
	NetWMMoveresizeMove:            fixedValue(8),
	NetWMMoveresizeSizeKeyboard:    fixedValue(9),
	NetWMMoveresizeMoveKeyboard:    fixedValue(10),
	NetWMMoveresizeCancel:          fixedValue(11),

	NetWMActionMove:          named("_NET_WM_ACTION_MOVE"),
	NetWMActionResize:        named("_NET_WM_ACTION_RESIZE"),
	NetWMActionMinimize:      named("_NET_WM_ACTION_MINIMIZE"),
	NetWMActionShade:         named("_NET_WM_ACTION_SHADE"),
	NetWMActionMaximizeHorz:  named("_NET_WM_ACTION_MAXIMIZE_HORZ"),
	NetWMActionMaximizeVert:  named("_NET_WM_ACTION_MAXIMIZE_VERT"),
	NetWMActionFullscreen:    named("_NET_WM_ACTION_FULLSCREEN"),
	NetWMActionChangeDesktop: named("_NET_WM_ACTION_CHANGE_DESKTOP"),
	NetWMActionClose:         named("_NET_WM_ACTION_CLOSE"),
	NetWMActionAbove:         named("_NET_WM_ACTION_ABOVE"),
	NetWMActionBelow:         named("_NET_WM_ACTION_BELOW"),

	NetWMStateModal:            named("_NET_WM_STATE_MODAL"),
	NetWMStateMaximizedVert:    named("_NET_WM_STATE_MAXIMIZED_VERT"),
	NetWMStateMaximizedHorz:    named("_NET_WM_STATE_MAXIMIZED_HORZ"),
	NetWMStateShaded:           named("_NET_WM_STATE_SHADED"),
	NetWMStateSkipTaskbar:      named("_NET_WM_STATE_SKIP_TASKBAR"),
	NetWMStateSkipPager:        named("_NET_WM_STATE_SKIP_PAGER"),
	NetWMStateHidden:           named("_NET_WM_STATE_HIDDEN"),
	NetWMStateFullscreen:       named("_NET_WM_STATE_FULLSCREEN"),
	NetWMStateAbove:            named("_NET_WM_STATE_ABOVE"),
	NetWMStateBelow:            named("_NET_WM_STATE_BELOW"),
	NetWMStateDemandsAttention: named("_NET_WM_STATE_DEMANDS_ATTENTION"),

	NetWMStateAdd:    fixedValue(1),
	NetWMStateRemove: fixedValue(0),
	NetWMStateToggle: fixedValue(2),

	NetWMOrientationHorz: fixedValue(0),
	NetWMOrientationVert: fixedValue(1),
	NetWMTopLeft:         fixedValue(0),
	NetWMTopRight:        fixedValue(1),
	NetWMBottomRight:     fixedValue(2),
	NetWMBottomLeft:      fixedValue(3),

	KDEWMChangeState:           named("_KDE_WM_CHANGE_STATE"),
	KDENetWMWindowTypeOverride: named("_KDE_NET_WM_WINDOW_TYPE_OVERRIDE"),

	OpenboxPID:           named("_OPENBOX_PID"),
	OBTheme:              named("_OB_THEME"),
	OBConfigFile:         named("_OB_CONFIG_FILE"),
	OBWMActionUndecorate: named("_OB_WM_ACTION_UNDECORATE"),
	OBWMStateUndecorated: named("_OB_WM_STATE_UNDECORATED"),
	OBControl:            named("_OB_CONTROL"),
	OBVersion:            named("_OB_VERSION"),
	OBAppRole:            named("_OB_APP_ROLE"),
	OBAppTitle:           named("_OB_APP_TITLE"),
	OBAppName:            named("_OB_APP_NAME"),
	OBAppClass:           named("_OB_APP_CLASS"),
	OBAppGroupName:       named("_OB_APP_GROUP_NAME"),
	OBAppGroupClass:      named("_OB_APP_GROUP_CLASS"),
	OBAppType:            named("_OB_APP_TYPE"),
}

var byName = func() map[string]ID {
	m := make(map[string]ID, len(entries))
	for id, e := range entries {
		if !e.fixed {
			m[e.name] = ID(id)
		}
	}
	return m
}()

// Lookup maps a wire name such as "_NET_WM_NAME" to its table ID.
// Numeric pseudo-atoms have no wire name and are never found.
func Lookup(name string) (ID, bool) {
	id, ok := byName[name]
	return id, ok
}

// Fixed reports whether id is a numeric pseudo-atom rather than an interned name.
func (id ID) Fixed() bool {
	return id.valid() && entries[id].fixed
}

func (id ID) valid() bool {
	return id >= 0 && id < NumIDs
}
