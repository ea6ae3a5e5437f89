// Package bridge is a mapping engine that lives in another process, usually
// the browser page that owns the rendering surface. The session side talks
// to it over a socket.io connection.
//
// Every engine operation is a request on the "engine:call" event carrying an
// id, a method and params. The remote answers on "engine:result" with the
// same id and either a result object or an error object with a code and a
// message. Remote-initiated traffic, such as a widget invoking a goTo
// override registered by the host, arrives on "engine:event".
//
// Methods:
//
//	capability.load     {name, api_key}
//	map.create          {basemap, layers: [{id, kind, title, url, styling}]}
//	view.create         {surface, center: [lon, lat], zoom, map}
//	view.whenReady      {view}
//	view.whenLayerView  {view, layer} -> {time_info: {start, end, interval_ms}}
//	view.add            {view, widget, position}
//	view.goTo           {view, center, zoom, scale}
//	view.destroy        {view}
//	widget.create       {name, view, content, options}
//	widget.update       {widget, full_time_extent | stops_ms}
//
// Option values that are host callbacks travel as {"$callback": id}. The
// remote invokes them with an "engine:event" of type "callback" and the host
// replies on "engine:callback_result".
package bridge
